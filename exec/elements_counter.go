package exec

import "github.com/fenwick-systems/pcmcore/config"

// UpdateCounter advances a Counter channel's workspace by one pass. inc,
// dec, and reset are the resolved values of the channel's three trigger
// inputs (§4.2).
func UpdateCounter(ws *CounterWorkspace, cfg config.CounterConfig, inc, dec, reset int32) int32 {
	if !ws.HasValue {
		ws.HasValue = true
		ws.Value = cfg.Initial
	}

	edge := cfg.Mode != config.TriggerLevel

	if counterFires(edge, ws.PrevRst, truthy(reset)) {
		ws.Value = cfg.Initial
	}
	ws.PrevRst = truthy(reset)

	if counterFires(edge, ws.PrevInc, truthy(inc)) {
		ws.Value = counterStep(ws.Value, cfg.Step, cfg.Min, cfg.Max, cfg.Wrap)
	}
	ws.PrevInc = truthy(inc)

	if counterFires(edge, ws.PrevDec, truthy(dec)) {
		ws.Value = counterStep(ws.Value, -cfg.Step, cfg.Min, cfg.Max, cfg.Wrap)
	}
	ws.PrevDec = truthy(dec)

	return int32(ws.Value)
}

func counterFires(edgeSensitive bool, prev, cur bool) bool {
	if !cur {
		return false
	}
	if edgeSensitive {
		return !prev
	}
	return true
}

func counterStep(v, step, min, max int16, wrap bool) int16 {
	next := int32(v) + int32(step)
	span := int32(max) - int32(min) + 1

	if next > int32(max) {
		if wrap {
			next = int32(min) + (next-int32(max)-1)%span
		} else {
			next = int32(max)
		}
	} else if next < int32(min) {
		if wrap {
			next = int32(max) - (int32(min)-next-1)%span
		} else {
			next = int32(min)
		}
	}
	return int16(next)
}
