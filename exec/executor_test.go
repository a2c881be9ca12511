package exec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fenwick-systems/pcmcore/channel"
	"github.com/fenwick-systems/pcmcore/config"
	"github.com/fenwick-systems/pcmcore/exec"
)

func newRegistryWithInputs(t *testing.T, values map[channel.ID]int32) *channel.Registry {
	t.Helper()
	reg := channel.NewRegistry(16)
	for id, v := range values {
		ch := &channel.Channel{ID: id, Kind: channel.KindAnalogInput, Flags: channel.FlagEnabled, Value: v}
		require.NoError(t, reg.Register(ch))
	}
	return reg
}

// Test_ScenarioA_HysteresisFanControl covers spec Scenario A.
func Test_ScenarioA_HysteresisFanControl(t *testing.T) {
	reg := newRegistryWithInputs(t, map[channel.ID]int32{10: 0})
	fan := &channel.Channel{
		ID: 300, Kind: channel.KindHysteresis, Flags: channel.FlagEnabled,
		Config: config.HysteresisConfig{InputID: 10, Variant: config.HysteresisSchmitt, ThresholdLow: 75, ThresholdHigh: 85},
	}
	require.NoError(t, reg.Register(fan))
	e := exec.NewExecutor(reg, nil)

	steps := []struct {
		input int32
		want  int32
	}{
		{70, 0}, {80, 0}, {86, 1}, {80, 1}, {74, 0}, {76, 0},
	}
	for i, s := range steps {
		reg.SetValue(10, s.input)
		e.Pass(uint32(i * 100))
		assert.Equal(t, s.want, reg.GetValue(300), "step %d", i)
	}
}

// Test_ScenarioB_PIDClamp covers spec Scenario B: output stays within
// [0,1000] and the integral never exceeds +-10000 over ten 20ms ticks.
func Test_ScenarioB_PIDClamp(t *testing.T) {
	reg := newRegistryWithInputs(t, map[channel.ID]int32{1: 850, 2: 800})
	pid := &channel.Channel{
		ID: 270, Kind: channel.KindPID, Flags: channel.FlagEnabled,
		Config: config.PIDConfig{
			SetpointID: 1, FeedbackID: 2,
			Kp: 1500, Ki: 200, Kd: 50,
			OutputMin: 0, OutputMax: 1000,
			IntegralMin: -10000, IntegralMax: 10000,
		},
	}
	require.NoError(t, reg.Register(pid))
	e := exec.NewExecutor(reg, nil)

	for i := 0; i < 10; i++ {
		e.Pass(uint32(i * 20))
		v := reg.GetValue(270)
		assert.GreaterOrEqual(t, v, int32(0))
		assert.LessOrEqual(t, v, int32(1000))

		ws, ok := pid.Workspace.(*exec.PIDWorkspace)
		require.True(t, ok)
		assert.GreaterOrEqual(t, ws.Integral, int32(-10000))
		assert.LessOrEqual(t, ws.Integral, int32(10000))
	}
}

// Test_ExecutorDeterminism covers spec property 3: identical inputs and
// identical now_ms sequence produce a bit-identical per-pass value sequence.
func Test_ExecutorDeterminism(t *testing.T) {
	build := func() (*channel.Registry, *exec.Executor) {
		reg := newRegistryWithInputs(t, map[channel.ID]int32{1: 0, 2: 0})
		ch := &channel.Channel{
			ID: 50, Kind: channel.KindMath, Flags: channel.FlagEnabled,
			Config: config.MathConfig{Operation: config.MathAdd, InputCount: 2, Inputs: [config.MathMaxInputs]channel.ID{1, 2}},
		}
		require.NoError(t, reg.Register(ch))
		return reg, exec.NewExecutor(reg, nil)
	}

	nowSeq := []uint32{0, 10, 25, 40, 60, 90}
	inputSeq := []int32{3, 7, -2, 100, 0, 42}

	run := func() []int32 {
		reg, e := build()
		var out []int32
		for i, now := range nowSeq {
			reg.SetValue(1, inputSeq[i])
			reg.SetValue(2, int32(i))
			e.Pass(now)
			out = append(out, reg.GetValue(50))
		}
		return out
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

// Test_StatefulResetIdempotence covers spec property 7: reset then update
// with the same (config, input, dt) sequence always yields the same value.
func Test_StatefulResetIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := config.FilterConfig{FilterKind: config.FilterEMA, Alpha: uint8(rapid.IntRange(1, 255).Draw(t, "alpha"))}
		input := rapid.Int32Range(-1000, 1000).Draw(t, "input")
		dt := uint32(rapid.IntRange(1, 100).Draw(t, "dt"))

		var ws1 exec.FilterWorkspace
		v1 := exec.UpdateFilter(&ws1, cfg, input, dt)

		var ws2 exec.FilterWorkspace
		ws2.Reset()
		v2 := exec.UpdateFilter(&ws2, cfg, input, dt)

		assert.Equal(t, v1, v2)
	})
}
