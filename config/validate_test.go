package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-systems/pcmcore/channel"
	"github.com/fenwick-systems/pcmcore/config"
)

func baseChannel(kind channel.Kind, cfg any) *channel.Channel {
	return &channel.Channel{
		ID:     channel.ID(channel.IDInputMin),
		Name:   "ch",
		Kind:   kind,
		Flags:  channel.FlagEnabled,
		Config: cfg,
	}
}

func Test_ValidateChannel_InvalidID(t *testing.T) {
	ch := baseChannel(channel.KindDigitalInput, config.DigitalInputConfig{})
	ch.ID = channel.IDInvalid

	err := config.ValidateChannel(ch, config.DefaultLimits())
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrInvalidChannelID, cfgErr.Code)
	assert.Equal(t, "id", cfgErr.Field)
}

func Test_ValidateChannel_NameTooLong(t *testing.T) {
	ch := baseChannel(channel.KindDigitalInput, config.DigitalInputConfig{})
	ch.Name = "this_name_is_definitely_longer_than_the_thirty_one_byte_budget"

	err := config.ValidateChannel(ch, config.DefaultLimits())
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrNameTooLong, cfgErr.Code)
}

func Test_ValidateChannel_DebounceOverLimit(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindDigitalInput, config.DigitalInputConfig{DebounceMs: lim.MaxDebounceMs + 1})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrInvalidDebounce, cfgErr.Code)
	assert.Equal(t, "debounce_ms", cfgErr.Field)
	assert.Equal(t, int64(lim.MaxDebounceMs+1), cfgErr.Actual)
}

func Test_ValidateChannel_CANBusOutOfRange(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindCANInput, config.CANInputConfig{
		Bus: lim.CANBusCount,
		Scale: config.Rational{Num: 1, Den: 1},
	})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrInvalidCANBus, cfgErr.Code)
}

func Test_ValidateChannel_CANBitPlacement(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindCANInput, config.CANInputConfig{
		StartBit: 60, BitLength: 16,
		Scale: config.Rational{Num: 1, Den: 1},
	})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrBitPlacement, cfgErr.Code)
}

func Test_ValidateChannel_PWMFreqOutOfRange(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindPWMOutput, config.PWMOutputConfig{
		FreqHz: lim.MaxPWMFreqHz + 1, MinDuty: 0, MaxDuty: 10000, DefaultDuty: 0,
	})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrInvalidPWMFreq, cfgErr.Code)
}

func Test_ValidateChannel_PWMDutyInverted(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindPWMOutput, config.PWMOutputConfig{
		FreqHz: lim.MinPWMFreqHz, MinDuty: 8000, MaxDuty: 2000, DefaultDuty: 5000,
	})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrInvalidDutyRange, cfgErr.Code)
}

func Test_ValidateChannel_LogicInsufficientInputs(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindLogic, config.LogicConfig{Operation: config.LogicAND, InputCount: 0})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrInsufficientInputs, cfgErr.Code)
}

func Test_ValidateChannel_NonMonotonicTable(t *testing.T) {
	lim := config.DefaultLimits()
	c := config.Table2DConfig{PointCount: 3}
	c.X[0], c.X[1], c.X[2] = 0, 10, 5
	ch := baseChannel(channel.KindTable2D, c)

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrNonMonotonicTable, cfgErr.Code)
}

func Test_ValidateChannel_PIDBoundInversion(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindPID, config.PIDConfig{
		OutputMin: 100, OutputMax: -100, IntegralMin: -1000, IntegralMax: 1000,
	})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrPIDBoundInversion, cfgErr.Code)
}

func Test_ValidateChannel_CounterNoTriggers(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindCounter, config.CounterConfig{
		IncTriggerID: channel.RefNone, DecTriggerID: channel.RefNone, ResetTriggerID: channel.RefNone,
		Min: 0, Max: 100,
	})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrCounterNoTriggers, cfgErr.Code)
}

func Test_ValidateChannel_SwitchNoCases(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindSwitch, config.SwitchConfig{CaseCount: 0})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrSwitchNoCases, cfgErr.Code)
}

func Test_ValidateChannel_NumberValueOutOfRange(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindNumber, config.NumberConfig{Value: 500, Min: 0, Max: 100})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrNumberOutOfRange, cfgErr.Code)
	assert.Equal(t, int64(500), cfgErr.Actual)
}

func Test_ValidateChannel_InvalidSourceID(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindPID, config.PIDConfig{
		OutputMin: -100, OutputMax: 100, IntegralMin: -1000, IntegralMax: 1000,
		SetpointID: 5000, FeedbackID: channel.RefNone,
	})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrInvalidSourceID, cfgErr.Code)
	assert.Equal(t, "setpoint_id", cfgErr.Field)
}

func Test_ValidateChannel_SourceIDAllowsRefNone(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindHysteresis, config.HysteresisConfig{InputID: channel.RefNone})

	assert.NoError(t, config.ValidateChannel(ch, lim))
}

func Test_ValidateChannel_SwitchInvalidSelectorID(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindSwitch, config.SwitchConfig{CaseCount: 1, SelectorID: 5000})

	err := config.ValidateChannel(ch, lim)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrInvalidSourceID, cfgErr.Code)
	assert.Equal(t, "selector_id", cfgErr.Field)
}

func Test_ValidateChannel_WellFormedPasses(t *testing.T) {
	lim := config.DefaultLimits()
	ch := baseChannel(channel.KindAnalogInput, config.AnalogInputConfig{
		RawMin: 0, RawMax: 4095, ScaledMin: 0, ScaledMax: 1000, FilterMs: 100,
	})

	assert.NoError(t, config.ValidateChannel(ch, lim))
}
