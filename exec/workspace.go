package exec

import "github.com/fenwick-systems/pcmcore/config"

// FilterWorkspace is the fixed-size runtime state for a Filter channel; only
// the fields used by the channel's configured FilterKind are meaningful
// (§4.2, §5: "per-channel workspace is fixed-size").
type FilterWorkspace struct {
	Ring       [config.FilterMaxSamples]int32
	Count      uint8
	Head       uint8
	HasValue   bool
	EMAValue   int32
	LPFScaled  int64 // fixed-point accumulator, scale 1<<16
	RLValue    int32
	DBStable   int32
	DBPending  int32
	DBHasStable bool
	DBDwellMs  uint32
}

// Reset clears a FilterWorkspace to its freshly-initialized state.
func (w *FilterWorkspace) Reset() { *w = FilterWorkspace{} }

// TimerState enumerates the timer element's state machine states (§4.9).
type TimerState uint8

const (
	TimerIdle TimerState = iota
	TimerPending
	TimerActive
	TimerCooling
	TimerBlinkOn
	TimerBlinkOff
)

// TimerWorkspace is the runtime state for a Timer channel (§4.2, §4.9).
type TimerWorkspace struct {
	State       TimerState
	ElapsedMs   uint32
	PrevTrigger bool
}

// Reset returns a TimerWorkspace to its initial IDLE state.
func (w *TimerWorkspace) Reset() { *w = TimerWorkspace{State: TimerIdle} }

// CounterWorkspace is the runtime state for a Counter channel (§4.2).
type CounterWorkspace struct {
	Value    int16
	PrevInc  bool
	PrevDec  bool
	PrevRst  bool
	HasValue bool
}

// Reset returns a CounterWorkspace to its uninitialized state; Initial is
// applied by the element on first update.
func (w *CounterWorkspace) Reset() { *w = CounterWorkspace{} }

// PIDWorkspace is the runtime state for a PID channel (§4.2).
type PIDWorkspace struct {
	Integral    int32
	PrevError   int32
	PrevMeasure int32
	HasPrev     bool
}

// Reset clears the integral and derivative history.
func (w *PIDWorkspace) Reset() { *w = PIDWorkspace{} }

// HysteresisWorkspace is the runtime state for a Hysteresis channel (§4.2).
type HysteresisWorkspace struct {
	Output int32
}

// Reset clears the output to zero (low/off).
func (w *HysteresisWorkspace) Reset() { *w = HysteresisWorkspace{} }

// FlipFlopWorkspace is the runtime state for a FlipFlop channel (§4.2).
type FlipFlopWorkspace struct {
	Q         bool
	PrevClock bool
}

// Reset restores Q to the configuration's Initial value.
func (w *FlipFlopWorkspace) Reset(initial bool) { *w = FlipFlopWorkspace{Q: initial} }
