package exec

import "github.com/fenwick-systems/pcmcore/config"

// UpdateFlipFlop advances a FlipFlop channel's workspace by one pass and
// returns Q (§4.2). s/r carry the S/R (or D, or J/K) inputs; clock carries
// the clock input for the edge-triggered variants.
func UpdateFlipFlop(ws *FlipFlopWorkspace, cfg config.FlipFlopConfig, s, r, clock int32) int32 {
	clockHigh := truthy(clock)
	edge := clockHigh && !ws.PrevClock
	ws.PrevClock = clockHigh

	switch cfg.Variant {
	case config.FlipFlopSR:
		if truthy(s) && !truthy(r) {
			ws.Q = true
		} else if truthy(r) && !truthy(s) {
			ws.Q = false
		}
		// both-set is an illegal state; Q holds.

	case config.FlipFlopSRLatch:
		if truthy(s) {
			ws.Q = true
		} else if truthy(r) {
			ws.Q = false
		}

	case config.FlipFlopD:
		if edge {
			ws.Q = truthy(s)
		}

	case config.FlipFlopDLatch:
		if clockHigh {
			ws.Q = truthy(s)
		}

	case config.FlipFlopT:
		if edge && truthy(s) {
			ws.Q = !ws.Q
		}

	case config.FlipFlopJK:
		if edge {
			j, k := truthy(s), truthy(r)
			switch {
			case j && !k:
				ws.Q = true
			case k && !j:
				ws.Q = false
			case j && k:
				ws.Q = !ws.Q
			}
		}
	}

	return boolToInt(ws.Q)
}
