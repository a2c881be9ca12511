package proto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-systems/pcmcore/channel"
	"github.com/fenwick-systems/pcmcore/config"
	"github.com/fenwick-systems/pcmcore/exec"
	"github.com/fenwick-systems/pcmcore/proto"
)

func newDispatcher(t *testing.T) *proto.Dispatcher {
	t.Helper()
	reg := channel.NewRegistry(16)
	e := exec.NewExecutor(reg, nil)
	return proto.NewDispatcher(reg, e, &config.MemStore{}, config.DefaultLimits())
}

func parseOne(t *testing.T, frame []byte) proto.Frame {
	t.Helper()
	p := proto.NewParser()
	for _, b := range frame {
		if f, ok := p.PushByte(b); ok {
			return f
		}
	}
	t.Fatal("no frame parsed")
	return proto.Frame{}
}

func Test_Dispatch_Ping(t *testing.T) {
	d := newDispatcher(t)
	resp, err := d.Handle(proto.Frame{Cmd: proto.CmdPing})
	require.NoError(t, err)
	f := parseOne(t, resp)
	assert.Equal(t, proto.CmdPong, f.Cmd)
}

func Test_Dispatch_SetChannelConfigThenGetValue(t *testing.T) {
	d := newDispatcher(t)

	ch := &channel.Channel{
		ID: channel.ID(channel.IDInputMin), Name: "din1", Kind: channel.KindDigitalInput,
		Flags: channel.FlagEnabled, Value: 1,
		Config: config.DigitalInputConfig{ActiveHigh: true},
	}
	entry, err := config.EncodeEntry(ch)
	require.NoError(t, err)

	resp, err := d.Handle(proto.Frame{Cmd: proto.CmdSetChannelConfig, Payload: entry})
	require.NoError(t, err)
	f := parseOne(t, resp)
	require.Equal(t, proto.CmdSetChannelConfigReply, f.Cmd)
	require.GreaterOrEqual(t, len(f.Payload), 4)
	assert.Equal(t, uint8(1), f.Payload[2], "success flag")

	getReq := make([]byte, 2)
	getReq[0] = byte(ch.ID)
	getReq[1] = byte(ch.ID >> 8)
	resp, err = d.Handle(proto.Frame{Cmd: proto.CmdGetChannelValue, Payload: getReq})
	require.NoError(t, err)
	f = parseOne(t, resp)
	require.Equal(t, proto.CmdGetChannelValueReply, f.Cmd)
	require.Len(t, f.Payload, 6)
	assert.Equal(t, int32(1), int32(f.Payload[2])|int32(f.Payload[3])<<8|int32(f.Payload[4])<<16|int32(f.Payload[5])<<24)
}

func Test_Dispatch_SaveThenApplyRoundTrip(t *testing.T) {
	d := newDispatcher(t)

	ch := &channel.Channel{
		ID: channel.ID(channel.IDInputMin), Name: "din1", Kind: channel.KindDigitalInput,
		Flags: channel.FlagEnabled, Value: 1,
		Config: config.DigitalInputConfig{ActiveHigh: true},
	}
	require.NoError(t, d.Registry.Register(ch))

	resp, err := d.Handle(proto.Frame{Cmd: proto.CmdSaveCurrentConfig})
	require.NoError(t, err)
	f := parseOne(t, resp)
	require.Equal(t, proto.CmdAck, f.Cmd)

	d.Registry.Unregister(ch.ID)
	resp, err = d.Handle(proto.Frame{Cmd: proto.CmdApplySavedConfig})
	require.NoError(t, err)
	f = parseOne(t, resp)
	require.Equal(t, proto.CmdAck, f.Cmd)

	assert.NotNil(t, d.Registry.Get(ch.ID))
}

func Test_Dispatch_ChunkedUpload(t *testing.T) {
	d := newDispatcher(t)

	ch := &channel.Channel{
		ID: channel.ID(channel.IDInputMin), Name: "din1", Kind: channel.KindDigitalInput,
		Flags: channel.FlagEnabled,
		Config: config.DigitalInputConfig{ActiveHigh: true},
	}
	entry, err := config.EncodeEntry(ch)
	require.NoError(t, err)
	blob, err := config.EncodeBlob([]*channel.Channel{ch}, 0, 0, false)
	require.NoError(t, err)
	_ = entry

	const chunkSize = 6
	var seq uint16
	for off := 0; off < len(blob); off += chunkSize {
		end := off + chunkSize
		if end > len(blob) {
			end = len(blob)
		}
		payload := make([]byte, 2)
		payload[0] = byte(seq)
		payload[1] = byte(seq >> 8)
		if seq == 0 {
			total := make([]byte, 4)
			total[0] = byte(len(blob))
			total[1] = byte(len(blob) >> 8)
			total[2] = byte(len(blob) >> 16)
			total[3] = byte(len(blob) >> 24)
			payload = append(payload, total...)
		}
		payload = append(payload, blob[off:end]...)

		resp, err := d.Handle(proto.Frame{Cmd: proto.CmdUploadBlobChunk, Payload: payload})
		require.NoError(t, err)
		f := parseOne(t, resp)
		require.Equal(t, proto.CmdAck, f.Cmd)
		seq++
	}

	assert.NotNil(t, d.Registry.Get(ch.ID))
}

func Test_Dispatch_GetSerial(t *testing.T) {
	d := newDispatcher(t)
	d.Serial = "PCM-0001"

	resp, err := d.Handle(proto.Frame{Cmd: proto.CmdGetSerial})
	require.NoError(t, err)
	f := parseOne(t, resp)
	require.Equal(t, proto.CmdGetSerial, f.Cmd)
	assert.Equal(t, "PCM-0001", string(f.Payload))
}

func Test_Dispatch_SetOutput(t *testing.T) {
	d := newDispatcher(t)
	ch := &channel.Channel{
		ID: channel.ID(channel.IDOutputMin), Name: "out1", Kind: channel.KindPowerOutput,
		Flags: channel.FlagEnabled, Config: config.PowerOutputConfig{},
	}
	require.NoError(t, d.Registry.Register(ch))

	payload := make([]byte, 6)
	payload[0] = byte(ch.ID)
	payload[1] = byte(ch.ID >> 8)
	payload[2] = 100
	resp, err := d.Handle(proto.Frame{Cmd: proto.CmdSetOutput, Payload: payload})
	require.NoError(t, err)
	f := parseOne(t, resp)
	require.Equal(t, proto.CmdAck, f.Cmd)
	assert.Equal(t, int32(100), d.Registry.GetValue(ch.ID))
}

func Test_Dispatch_SetOutputWrongKindYieldsNack(t *testing.T) {
	d := newDispatcher(t)
	ch := &channel.Channel{
		ID: channel.ID(channel.IDOutputMin), Name: "pwm1", Kind: channel.KindPWMOutput,
		Flags: channel.FlagEnabled, Config: config.PWMOutputConfig{},
	}
	require.NoError(t, d.Registry.Register(ch))

	payload := make([]byte, 6)
	payload[0] = byte(ch.ID)
	payload[1] = byte(ch.ID >> 8)
	resp, err := d.Handle(proto.Frame{Cmd: proto.CmdSetOutput, Payload: payload})
	require.NoError(t, err)
	f := parseOne(t, resp)
	require.Equal(t, proto.CmdNack, f.Cmd)
}

func Test_Dispatch_TelemetrySubscribeThenUnsubscribe(t *testing.T) {
	d := newDispatcher(t)

	payload := make([]byte, 4)
	payload[0], payload[1] = 0x01, 0x00 // flags = 1
	payload[2], payload[3] = 0x64, 0x00 // rate hint = 100ms

	resp, err := d.Handle(proto.Frame{Cmd: proto.CmdTelemetrySubscribe, Payload: payload})
	require.NoError(t, err)
	f := parseOne(t, resp)
	require.Equal(t, proto.CmdAck, f.Cmd)
	assert.True(t, d.TelemetrySubscribed)
	assert.Equal(t, uint16(1), d.TelemetryFlags)
	assert.Equal(t, uint16(100), d.TelemetryRateHintMs)

	resp, err = d.Handle(proto.Frame{Cmd: proto.CmdTelemetryUnsubscribe})
	require.NoError(t, err)
	f = parseOne(t, resp)
	require.Equal(t, proto.CmdAck, f.Cmd)
	assert.False(t, d.TelemetrySubscribed)
}

func Test_Dispatch_UnknownCommandYieldsErrorFrame(t *testing.T) {
	d := newDispatcher(t)
	resp, err := d.Handle(proto.Frame{Cmd: 0x7E})
	require.NoError(t, err)
	f := parseOne(t, resp)
	require.Equal(t, proto.CmdErrorFrame, f.Cmd)
	require.Len(t, f.Payload, 2)
	assert.Equal(t, uint8(config.ErrUnknownCommand), f.Payload[0])
}
