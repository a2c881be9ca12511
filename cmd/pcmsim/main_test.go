package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-systems/pcmcore/channel"
	"github.com/fenwick-systems/pcmcore/config"
	"github.com/fenwick-systems/pcmcore/internal/obslog"
	"github.com/fenwick-systems/pcmcore/proto"
	"github.com/fenwick-systems/pcmcore/telemetry"
)

func Test_WriteTelemetry_FramesAndFlagsSetDigitalInputBit(t *testing.T) {
	reg := channel.NewRegistry(4)
	require.NoError(t, reg.Register(&channel.Channel{
		ID: channel.ID(channel.IDInputMin), Kind: channel.KindDigitalInput,
		Flags: channel.FlagEnabled, Value: 1,
		Config: config.DigitalInputConfig{ActiveHigh: true},
	}))
	require.NoError(t, reg.Register(&channel.Channel{
		ID: channel.ID(channel.IDVirtMin), Kind: channel.KindNumber,
		Flags: channel.FlagEnabled, Value: 42,
		Config: config.NumberConfig{},
	}))

	logger := obslog.New(os.Stderr, "test", obslog.ParseLevel("error"))

	var out bytes.Buffer
	flags := telemetry.FlagDIN | telemetry.FlagVirtuals | telemetry.FlagFaults
	writeTelemetry(reg, flags, &out, 7, 1000, logger)

	require.Greater(t, out.Len(), 0)

	p := proto.NewParser()
	var frame proto.Frame
	found := false
	for _, b := range out.Bytes() {
		if f, ok := p.PushByte(b); ok {
			frame = f
			found = true
			break
		}
	}
	require.True(t, found, "expected one telemetry frame")
	assert.Equal(t, proto.CmdTelemetryData, frame.Cmd)

	pkt, err := telemetry.Parse(frame.Payload, telemetry.Dims{})
	require.NoError(t, err)
	assert.Equal(t, uint32(7), pkt.Header.StreamCounter)
	assert.Equal(t, uint32(1), pkt.DigitalInput&1)
	require.Len(t, pkt.Virtuals, 1)
	assert.Equal(t, int32(42), pkt.Virtuals[0].Value)
}

func Test_WriteTelemetry_OmitsSectionsNotInSubscribedFlags(t *testing.T) {
	reg := channel.NewRegistry(4)
	require.NoError(t, reg.Register(&channel.Channel{
		ID: channel.ID(channel.IDVirtMin), Kind: channel.KindNumber,
		Flags: channel.FlagEnabled, Value: 42,
		Config: config.NumberConfig{},
	}))

	logger := obslog.New(os.Stderr, "test", obslog.ParseLevel("error"))

	var out bytes.Buffer
	writeTelemetry(reg, telemetry.FlagDIN, &out, 1, 0, logger)

	p := proto.NewParser()
	var frame proto.Frame
	found := false
	for _, b := range out.Bytes() {
		if f, ok := p.PushByte(b); ok {
			frame = f
			found = true
			break
		}
	}
	require.True(t, found, "expected one telemetry frame")

	pkt, err := telemetry.Parse(frame.Payload, telemetry.Dims{})
	require.NoError(t, err)
	assert.Empty(t, pkt.Virtuals, "virtuals section was not in the subscribed flag bitmap")
}
