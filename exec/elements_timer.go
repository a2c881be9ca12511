package exec

import "github.com/fenwick-systems/pcmcore/config"

// UpdateTimer advances a Timer channel's state machine by one pass and
// returns its output (1 asserted / 0 deasserted) (§4.2, §4.9).
func UpdateTimer(ws *TimerWorkspace, cfg config.TimerConfig, trigger int32, dtMs uint32) int32 {
	active := timerTriggerActive(cfg.TriggerMode, ws.PrevTrigger, truthy(trigger))
	ws.PrevTrigger = truthy(trigger)

	switch cfg.Mode {
	case config.TimerDelayOn:
		return updateDelayOn(ws, cfg, active, dtMs)
	case config.TimerDelayOff:
		return updateDelayOff(ws, cfg, active, dtMs)
	case config.TimerOneShot:
		return updateOneShot(ws, cfg, active, dtMs)
	case config.TimerBlink:
		return updateBlink(ws, cfg, active, dtMs)
	default:
		return 0
	}
}

// timerTriggerActive interprets the raw trigger value according to the
// configured trigger polarity.
func timerTriggerActive(mode uint8, prev, cur bool) bool {
	switch mode {
	case config.TriggerRisingEdge:
		return cur && !prev
	case config.TriggerFallingEdge:
		return !cur && prev
	case config.TriggerEitherEdge:
		return cur != prev
	default: // TriggerLevel
		return cur
	}
}

func updateDelayOn(ws *TimerWorkspace, cfg config.TimerConfig, active bool, dtMs uint32) int32 {
	switch ws.State {
	case TimerIdle:
		if active {
			ws.State = TimerPending
			ws.ElapsedMs = 0
		}
	case TimerPending:
		if !active && cfg.TriggerMode == config.TriggerLevel {
			ws.State = TimerIdle
			return 0
		}
		ws.ElapsedMs += dtMs
		if ws.ElapsedMs >= cfg.DelayMs {
			ws.State = TimerActive
		}
	case TimerActive:
		if !active && (cfg.AutoReset || cfg.TriggerMode == config.TriggerLevel) {
			ws.State = TimerIdle
			ws.ElapsedMs = 0
		}
	}
	return boolToInt(ws.State == TimerActive)
}

func updateDelayOff(ws *TimerWorkspace, cfg config.TimerConfig, active bool, dtMs uint32) int32 {
	switch ws.State {
	case TimerIdle:
		if active {
			ws.State = TimerActive
		}
	case TimerActive:
		if !active {
			ws.State = TimerCooling
			ws.ElapsedMs = 0
		}
	case TimerCooling:
		if active {
			ws.State = TimerActive
			ws.ElapsedMs = 0
			return boolToInt(true)
		}
		ws.ElapsedMs += dtMs
		if ws.ElapsedMs >= cfg.DelayMs {
			ws.State = TimerIdle
		}
	}
	return boolToInt(ws.State == TimerActive || ws.State == TimerCooling)
}

func updateOneShot(ws *TimerWorkspace, cfg config.TimerConfig, active bool, dtMs uint32) int32 {
	switch ws.State {
	case TimerIdle:
		if active {
			ws.State = TimerActive
			ws.ElapsedMs = 0
		}
	case TimerActive:
		ws.ElapsedMs += dtMs
		if ws.ElapsedMs >= cfg.DelayMs {
			ws.State = TimerIdle
			if cfg.AutoReset {
				ws.ElapsedMs = 0
			}
			return 0
		}
	}
	return boolToInt(ws.State == TimerActive)
}

func updateBlink(ws *TimerWorkspace, cfg config.TimerConfig, active bool, dtMs uint32) int32 {
	if !active {
		ws.State = TimerIdle
		ws.ElapsedMs = 0
		return 0
	}

	if ws.State != TimerBlinkOn && ws.State != TimerBlinkOff {
		ws.State = TimerBlinkOn
		ws.ElapsedMs = 0
	}

	ws.ElapsedMs += dtMs
	switch ws.State {
	case TimerBlinkOn:
		if ws.ElapsedMs >= uint32(cfg.BlinkOnMs) {
			ws.State = TimerBlinkOff
			ws.ElapsedMs = 0
		}
	case TimerBlinkOff:
		if ws.ElapsedMs >= uint32(cfg.BlinkOffMs) {
			ws.State = TimerBlinkOn
			ws.ElapsedMs = 0
		}
	}
	return boolToInt(ws.State == TimerBlinkOn)
}
