package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fenwick-systems/pcmcore/telemetry"
)

// Test_RoundTripProperty covers spec property 6: parse(build(packet)) ==
// packet for any combination of section flags and any virtuals count.
func Test_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dims := telemetry.Dims{
			NumADC:     rapid.IntRange(0, 8).Draw(t, "num_adc"),
			NumOutputs: rapid.IntRange(0, 8).Draw(t, "num_outputs"),
			NumHBridge: rapid.IntRange(0, 4).Draw(t, "num_hbridge"),
		}

		flags := uint16(rapid.IntRange(0, 0xFF).Draw(t, "flags"))

		p := telemetry.Packet{
			Header: telemetry.Header{
				StreamCounter:      rapid.Uint32().Draw(t, "stream_counter"),
				TimestampMs:        rapid.Uint32().Draw(t, "timestamp_ms"),
				InputVoltageMV:     uint16(rapid.IntRange(0, 65535).Draw(t, "input_voltage")),
				MCUTemperatureDeci: int16(rapid.IntRange(-3000, 3000).Draw(t, "mcu_temp")),
				BoardTempDeci:      int16(rapid.IntRange(-3000, 3000).Draw(t, "board_temp")),
				TotalCurrentMA:     rapid.Uint32().Draw(t, "total_current"),
				Flags:              flags,
			},
		}

		if flags&telemetry.FlagADC != 0 {
			p.ADC = rapid.SliceOfN(rapid.Uint16(), dims.NumADC, dims.NumADC).Draw(t, "adc")
		}
		if flags&telemetry.FlagOutputs != 0 {
			p.Outputs = rapid.SliceOfN(rapid.Byte(), dims.NumOutputs, dims.NumOutputs).Draw(t, "outputs")
		}
		if flags&telemetry.FlagHBridge != 0 {
			p.HBridges = make([]telemetry.HBridgeReading, dims.NumHBridge)
			for i := range p.HBridges {
				p.HBridges[i] = telemetry.HBridgeReading{
					Position: int16(rapid.IntRange(-1000, 1000).Draw(t, "hb_pos")),
					Current:  uint16(rapid.IntRange(0, 65535).Draw(t, "hb_cur")),
				}
			}
		}
		if flags&telemetry.FlagDIN != 0 {
			p.DigitalInput = rapid.Uint32().Draw(t, "din")
		}
		if flags&telemetry.FlagVirtuals != 0 {
			n := rapid.IntRange(0, telemetry.VirtualMax).Draw(t, "num_virtuals")
			p.Virtuals = make([]telemetry.VirtualReading, n)
			for i := range p.Virtuals {
				p.Virtuals[i] = telemetry.VirtualReading{
					ChannelID: uint16(rapid.IntRange(0, 1023).Draw(t, "virt_id")),
					Value:     rapid.Int32().Draw(t, "virt_value"),
				}
			}
		}
		if flags&telemetry.FlagFaults != 0 {
			p.Status = uint8(rapid.IntRange(0, 255).Draw(t, "status"))
			p.FaultFlags = uint8(rapid.IntRange(0, 255).Draw(t, "fault_flags"))
		}
		if flags&telemetry.FlagCurrents != 0 {
			p.OutCurrents = rapid.SliceOfN(rapid.Uint16(), dims.NumOutputs, dims.NumOutputs).Draw(t, "out_currents")
		}

		wire := telemetry.Build(p)
		got, err := telemetry.Parse(wire, dims)
		require.NoError(t, err)
		assert.False(t, got.Truncated)
		assert.Equal(t, p, got)
	})
}

func Test_TruncatedPacketIsTolerated(t *testing.T) {
	p := telemetry.Packet{
		Header: telemetry.Header{Flags: telemetry.FlagDIN},
		DigitalInput: 0xDEADBEEF,
	}
	wire := telemetry.Build(p)
	short := wire[:len(wire)-2]

	got, err := telemetry.Parse(short, telemetry.Dims{})
	require.NoError(t, err)
	assert.True(t, got.Truncated)
}
