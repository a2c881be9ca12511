package exec

import (
	"github.com/fenwick-systems/pcmcore/channel"
	"github.com/fenwick-systems/pcmcore/config"
)

// HardwareWriter routes a computed output channel's value to the hardware
// layer (§4.6, §6: "write_output(hw_device, hw_index, value)").
type HardwareWriter interface {
	WriteOutput(kind channel.Kind, hwDevice, hwIndex uint8, value int32)
}

// NopWriter discards all writes; useful for tests and dry runs.
type NopWriter struct{}

func (NopWriter) WriteOutput(channel.Kind, uint8, uint8, int32) {}

// Executor runs single-pass evaluation of every computed channel in a
// registry, in registration order, with no topological sort (§4.6).
type Executor struct {
	Registry *channel.Registry
	Writer   HardwareWriter

	lastMs   uint32
	hasFirst bool
}

// NewExecutor builds an Executor bound to reg, writing outputs through w. A
// nil w is replaced with NopWriter.
func NewExecutor(reg *channel.Registry, w HardwareWriter) *Executor {
	if w == nil {
		w = NopWriter{}
	}
	return &Executor{Registry: reg, Writer: w}
}

// Pass runs one full traversal of the registry (§4.6). now_ms is a
// monotonic millisecond clock from the caller; dt_ms saturates to zero on
// the first call.
func (e *Executor) Pass(nowMs uint32) {
	var dtMs uint32
	if e.hasFirst {
		if nowMs >= e.lastMs {
			dtMs = nowMs - e.lastMs
		}
	}
	e.hasFirst = true
	e.lastMs = nowMs

	for _, id := range e.Registry.Order() {
		ch := e.Registry.Get(id)
		if ch == nil || !ch.Enabled() {
			continue
		}
		e.dispatch(ch, dtMs)
	}
}

func (e *Executor) input(id channel.ID) int32 {
	return e.Registry.GetValue(id)
}

func (e *Executor) dispatch(ch *channel.Channel, dtMs uint32) {
	switch ch.Kind {
	case channel.KindLogic:
		cfg, ok := ch.Config.(config.LogicConfig)
		if !ok {
			return
		}
		inputs := make([]int32, cfg.InputCount)
		for i := 0; i < int(cfg.InputCount); i++ {
			inputs[i] = e.input(cfg.Inputs[i])
		}
		e.store(ch, EvalLogic(cfg, inputs))

	case channel.KindMath:
		cfg, ok := ch.Config.(config.MathConfig)
		if !ok {
			return
		}
		inputs := make([]int32, cfg.InputCount)
		for i := 0; i < int(cfg.InputCount); i++ {
			inputs[i] = e.input(cfg.Inputs[i])
		}
		e.store(ch, EvalMath(cfg, inputs))

	case channel.KindTable2D:
		cfg, ok := ch.Config.(config.Table2DConfig)
		if !ok {
			return
		}
		e.store(ch, EvalTable2D(cfg, e.input(cfg.InputID)))

	case channel.KindTable3D:
		cfg, ok := ch.Config.(config.Table3DConfig)
		if !ok {
			return
		}
		e.store(ch, EvalTable3D(cfg, e.input(cfg.InputXID), e.input(cfg.InputYID)))

	case channel.KindFilter:
		cfg, ok := ch.Config.(config.FilterConfig)
		if !ok {
			return
		}
		ws := e.filterWorkspace(ch)
		e.store(ch, UpdateFilter(ws, cfg, e.input(cfg.InputID), dtMs))

	case channel.KindTimer:
		cfg, ok := ch.Config.(config.TimerConfig)
		if !ok {
			return
		}
		ws := e.timerWorkspace(ch)
		e.store(ch, UpdateTimer(ws, cfg, e.input(cfg.TriggerID), dtMs))

	case channel.KindCounter:
		cfg, ok := ch.Config.(config.CounterConfig)
		if !ok {
			return
		}
		ws := e.counterWorkspace(ch)
		e.store(ch, UpdateCounter(ws, cfg, e.input(cfg.IncTriggerID), e.input(cfg.DecTriggerID), e.input(cfg.ResetTriggerID)))

	case channel.KindPID:
		cfg, ok := ch.Config.(config.PIDConfig)
		if !ok {
			return
		}
		ws := e.pidWorkspace(ch)
		e.store(ch, UpdatePID(ws, cfg, e.input(cfg.SetpointID), e.input(cfg.FeedbackID), dtMs))

	case channel.KindHysteresis:
		cfg, ok := ch.Config.(config.HysteresisConfig)
		if !ok {
			return
		}
		ws := e.hysteresisWorkspace(ch)
		e.store(ch, UpdateHysteresis(ws, cfg, e.input(cfg.InputID)))

	case channel.KindFlipFlop:
		cfg, ok := ch.Config.(config.FlipFlopConfig)
		if !ok {
			return
		}
		ws := e.flipFlopWorkspace(ch, cfg.Initial)
		e.store(ch, UpdateFlipFlop(ws, cfg, e.input(cfg.InputS), e.input(cfg.InputR), e.input(cfg.Clock)))

	case channel.KindNumber:
		// Number channels are host-writable tunables, not re-derived per pass.

	case channel.KindSwitch:
		cfg, ok := ch.Config.(config.SwitchConfig)
		if !ok {
			return
		}
		e.store(ch, evalSwitch(cfg, e.input(cfg.SelectorID)))

	case channel.KindPowerOutput, channel.KindPWMOutput, channel.KindHBridge, channel.KindCANOutput:
		e.writeOutput(ch)
	}
}

func (e *Executor) store(ch *channel.Channel, v int32) {
	ch.PrevValue = ch.Value
	ch.Value = v
}

// writeOutput routes the channel's current value to the hardware writer
// (§4.6 step 3). The value is whatever an upstream computed/logic channel
// or a direct registry write last set.
func (e *Executor) writeOutput(ch *channel.Channel) {
	e.Writer.WriteOutput(ch.Kind, ch.HWDevice, ch.HWIndex, ch.Value)
}

func evalSwitch(cfg config.SwitchConfig, selector int32) int32 {
	switch cfg.Mode {
	case config.SwitchIndex:
		idx := int(selector)
		if idx >= 0 && idx < int(cfg.CaseCount) {
			return cfg.Cases[idx].Result
		}
	case config.SwitchRangeMatch:
		for i := 0; i < int(cfg.CaseCount); i++ {
			c := cfg.Cases[i]
			if selector >= c.Match && selector <= c.Max {
				return c.Result
			}
		}
	default: // SwitchValueMatch
		for i := 0; i < int(cfg.CaseCount); i++ {
			if cfg.Cases[i].Match == selector {
				return cfg.Cases[i].Result
			}
		}
	}
	return cfg.Default
}

func (e *Executor) filterWorkspace(ch *channel.Channel) *FilterWorkspace {
	ws, ok := ch.Workspace.(*FilterWorkspace)
	if !ok {
		ws = &FilterWorkspace{}
		ch.Workspace = ws
	}
	return ws
}

func (e *Executor) timerWorkspace(ch *channel.Channel) *TimerWorkspace {
	ws, ok := ch.Workspace.(*TimerWorkspace)
	if !ok {
		ws = &TimerWorkspace{}
		ch.Workspace = ws
	}
	return ws
}

func (e *Executor) counterWorkspace(ch *channel.Channel) *CounterWorkspace {
	ws, ok := ch.Workspace.(*CounterWorkspace)
	if !ok {
		ws = &CounterWorkspace{}
		ch.Workspace = ws
	}
	return ws
}

func (e *Executor) pidWorkspace(ch *channel.Channel) *PIDWorkspace {
	ws, ok := ch.Workspace.(*PIDWorkspace)
	if !ok {
		ws = &PIDWorkspace{}
		ch.Workspace = ws
	}
	return ws
}

func (e *Executor) hysteresisWorkspace(ch *channel.Channel) *HysteresisWorkspace {
	ws, ok := ch.Workspace.(*HysteresisWorkspace)
	if !ok {
		ws = &HysteresisWorkspace{}
		ch.Workspace = ws
	}
	return ws
}

func (e *Executor) flipFlopWorkspace(ch *channel.Channel, initial bool) *FlipFlopWorkspace {
	ws, ok := ch.Workspace.(*FlipFlopWorkspace)
	if !ok {
		ws = &FlipFlopWorkspace{Q: initial}
		ch.Workspace = ws
	}
	return ws
}
