package exec

import "github.com/fenwick-systems/pcmcore/config"

// UpdateHysteresis advances a Hysteresis channel's workspace by one pass
// and returns its output (§4.2).
func UpdateHysteresis(ws *HysteresisWorkspace, cfg config.HysteresisConfig, input int32) int32 {
	var out int32

	switch cfg.Variant {
	case config.HysteresisSchmitt:
		if ws.Output != 0 {
			if input <= cfg.ThresholdLow {
				ws.Output = 0
			}
		} else {
			if input >= cfg.ThresholdHigh {
				ws.Output = 1
			}
		}
		out = ws.Output

	case config.HysteresisWindow:
		if ws.Output != 0 {
			if input < cfg.ThresholdLow || input > cfg.ThresholdHigh {
				ws.Output = 0
			}
		} else {
			if input >= cfg.ThresholdLow && input <= cfg.ThresholdHigh {
				ws.Output = 1
			}
		}
		out = ws.Output

	case config.HysteresisMultilevel:
		span := cfg.ThresholdHigh - cfg.ThresholdLow
		if span <= 0 {
			out = 0
			break
		}
		level := (input - cfg.ThresholdLow) * 4 / span
		if level < 0 {
			level = 0
		}
		if level > 4 {
			level = 4
		}
		ws.Output = level
		out = level
	}

	if cfg.Invert {
		out = boolToInt(out == 0)
	}
	return out
}
