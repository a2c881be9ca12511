package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fenwick-systems/pcmcore/channel"
	"github.com/fenwick-systems/pcmcore/config"
)

func Test_EmptyBlobRoundTrip(t *testing.T) {
	blob, err := config.EncodeBlob(nil, 1, 0, false)
	require.NoError(t, err)
	assert.Equal(t, config.FileHeaderSize, len(blob))

	h, channels, err := config.DecodeBlob(blob)
	require.NoError(t, err)
	assert.Equal(t, config.BlobMagic, h.Magic)
	assert.Equal(t, config.CurrentVersion, h.Version)
	assert.Equal(t, uint32(config.FileHeaderSize), h.TotalSize)
	assert.Empty(t, channels)
}

func Test_CorruptedCRCIsRejected(t *testing.T) {
	blob, err := config.EncodeBlob(nil, 1, 0, false)
	require.NoError(t, err)

	corrupt := append([]byte(nil), blob...)
	corrupt[12] ^= 0xFF

	_, _, err = config.DecodeBlob(corrupt)
	require.Error(t, err)
	var cfgErr config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.ErrCrcMismatch, cfgErr.Code)
}

func Test_EntryRoundTrip_AnalogInput(t *testing.T) {
	ch := &channel.Channel{
		ID:    channel.ID(10),
		Name:  "coolant_temp",
		Kind:  channel.KindAnalogInput,
		Flags: channel.FlagEnabled,
		Value: 42,
		Config: config.AnalogInputConfig{
			RawMin: 0, RawMax: 4095,
			ScaledMin: -400, ScaledMax: 1500,
			FilterMs: 50, FilterKind: config.FilterEMA, SampleCount: 4,
		},
	}

	blob, err := config.EncodeBlob([]*channel.Channel{ch}, 1, 0, false)
	require.NoError(t, err)

	_, got, err := config.DecodeBlob(blob)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, ch.ID, got[0].ID)
	assert.Equal(t, ch.Name, got[0].Name)
	assert.Equal(t, ch.Kind, got[0].Kind)
	assert.Equal(t, ch.Flags, got[0].Flags)
	assert.Equal(t, ch.Value, got[0].Value)
	assert.Equal(t, ch.Config, got[0].Config)
}

var allKinds = []channel.Kind{
	channel.KindDigitalInput, channel.KindAnalogInput, channel.KindFrequencyInput,
	channel.KindCANInput, channel.KindPowerOutput, channel.KindPWMOutput,
	channel.KindHBridge, channel.KindCANOutput, channel.KindTimer,
	channel.KindLogic, channel.KindMath, channel.KindTable2D, channel.KindTable3D,
	channel.KindFilter, channel.KindPID, channel.KindNumber, channel.KindSwitch,
	channel.KindCounter, channel.KindFlipFlop, channel.KindHysteresis,
}

func zeroConfigFor(kind channel.Kind) any {
	switch kind {
	case channel.KindDigitalInput:
		return config.DigitalInputConfig{}
	case channel.KindAnalogInput:
		return config.AnalogInputConfig{}
	case channel.KindFrequencyInput:
		return config.FrequencyInputConfig{}
	case channel.KindCANInput:
		return config.CANInputConfig{}
	case channel.KindPowerOutput:
		return config.PowerOutputConfig{}
	case channel.KindPWMOutput:
		return config.PWMOutputConfig{}
	case channel.KindHBridge:
		return config.HBridgeConfig{}
	case channel.KindCANOutput:
		return config.CANOutputConfig{}
	case channel.KindTimer:
		return config.TimerConfig{}
	case channel.KindLogic:
		return config.LogicConfig{}
	case channel.KindMath:
		return config.MathConfig{}
	case channel.KindTable2D:
		return config.Table2DConfig{}
	case channel.KindTable3D:
		return config.Table3DConfig{}
	case channel.KindFilter:
		return config.FilterConfig{}
	case channel.KindPID:
		return config.PIDConfig{}
	case channel.KindNumber:
		return config.NumberConfig{}
	case channel.KindSwitch:
		return config.SwitchConfig{}
	case channel.KindCounter:
		return config.CounterConfig{}
	case channel.KindFlipFlop:
		return config.FlipFlopConfig{}
	case channel.KindHysteresis:
		return config.HysteresisConfig{}
	}
	return nil
}

// Test_TypeConfigRoundTrip_ZeroValue covers spec property 1 (round-trip
// byte-identity) for the zero value of every channel kind's config record,
// over its exact frozen wire size.
func Test_TypeConfigRoundTrip_ZeroValue(t *testing.T) {
	for _, kind := range allKinds {
		zero := zeroConfigFor(kind)
		encoded, err := config.EncodeTypeConfig(kind, zero)
		require.NoErrorf(t, err, "kind %v", kind)
		assert.Lenf(t, encoded, config.WireSize(kind), "kind %v", kind)

		decoded, err := config.DecodeTypeConfig(kind, encoded)
		require.NoErrorf(t, err, "kind %v", kind)
		assert.Equalf(t, zero, decoded, "kind %v", kind)
	}
}

// Test_AnalogInputRoundTripProperty is a rapid property test: any
// AnalogInputConfig round-trips through encode/decode byte-for-byte (§8.1).
func Test_AnalogInputRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := config.AnalogInputConfig{
			RawMin:      rapid.Int32().Draw(t, "raw_min"),
			RawMax:      rapid.Int32().Draw(t, "raw_max"),
			ScaledMin:   rapid.Int32().Draw(t, "scaled_min"),
			ScaledMax:   rapid.Int32().Draw(t, "scaled_max"),
			FilterMs:    uint16(rapid.IntRange(0, 65535).Draw(t, "filter_ms")),
			FilterKind:  uint8(rapid.IntRange(0, 255).Draw(t, "filter_kind")),
			SampleCount: uint8(rapid.IntRange(0, 255).Draw(t, "sample_count")),
		}

		encoded, err := config.EncodeTypeConfig(channel.KindAnalogInput, c)
		require.NoError(t, err)
		decoded, err := config.DecodeTypeConfig(channel.KindAnalogInput, encoded)
		require.NoError(t, err)
		assert.Equal(t, c, decoded)
	})
}

// Test_BlobRoundTripProperty draws a random number of analog input channels
// and checks the whole blob round-trips (§8.1).
func Test_BlobRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		channels := make([]*channel.Channel, n)
		for i := 0; i < n; i++ {
			channels[i] = &channel.Channel{
				ID:    channel.ID(channel.IDInputMin + i),
				Name:  rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "name"),
				Kind:  channel.KindDigitalInput,
				Flags: channel.FlagEnabled,
				Value: rapid.Int32().Draw(t, "value"),
				Config: config.DigitalInputConfig{
					ActiveHigh: rapid.Bool().Draw(t, "active_high"),
					DebounceMs: uint16(rapid.IntRange(0, 65535).Draw(t, "debounce")),
				},
			}
		}

		blob, err := config.EncodeBlob(channels, 7, 1234, false)
		require.NoError(t, err)

		h, got, err := config.DecodeBlob(blob)
		require.NoError(t, err)
		assert.Equal(t, uint16(n), h.ChannelCount)
		require.Len(t, got, n)
		for i := range channels {
			assert.Equal(t, channels[i].ID, got[i].ID)
			assert.Equal(t, channels[i].Name, got[i].Name)
			assert.Equal(t, channels[i].Value, got[i].Value)
			assert.Equal(t, channels[i].Config, got[i].Config)
		}
	})
}
