package exec

import "github.com/fenwick-systems/pcmcore/config"

// pidScale is the fixed divisor applied to the weighted P+I+D sum before
// clamping to the configured output range (§4.2).
const pidScale = 100

// UpdatePID advances a PID channel's workspace by one pass and returns the
// clamped controller output (§4.2).
func UpdatePID(ws *PIDWorkspace, cfg config.PIDConfig, setpoint, feedback int32, dtMs uint32) int32 {
	e := setpoint - feedback
	if abs32(e) <= int32(cfg.Deadband) {
		e = 0
	}

	dt := int64(dtMs)
	if dt == 0 {
		dt = 1
	}

	integral := int64(ws.Integral) + int64(e)*dt/1000
	if integral < int64(cfg.IntegralMin) {
		integral = int64(cfg.IntegralMin)
	}
	if integral > int64(cfg.IntegralMax) {
		integral = int64(cfg.IntegralMax)
	}
	ws.Integral = int32(integral)

	var derivInput int32
	if !ws.HasPrev {
		derivInput = 0
	} else if cfg.DOnMeasurement {
		derivInput = feedback - ws.PrevMeasure
	} else {
		derivInput = e - ws.PrevError
	}
	ws.PrevError = e
	ws.PrevMeasure = feedback
	ws.HasPrev = true

	p := int64(cfg.Kp) * int64(e)
	i := int64(cfg.Ki) * integral
	d := int64(cfg.Kd) * int64(derivInput)

	out := (p + i - d) / pidScale
	if out < int64(cfg.OutputMin) {
		out = int64(cfg.OutputMin)
	}
	if out > int64(cfg.OutputMax) {
		out = int64(cfg.OutputMax)
	}
	return int32(out)
}
