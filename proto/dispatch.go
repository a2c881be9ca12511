package proto

import (
	"encoding/binary"

	"github.com/fenwick-systems/pcmcore/channel"
	"github.com/fenwick-systems/pcmcore/config"
	"github.com/fenwick-systems/pcmcore/exec"
)

var le = binary.LittleEndian

// Dispatcher binds incoming command frames to the channel registry,
// executor, and flash store, producing the response frame for each request
// (§4.7). Handle answers every request with a response frame (a data reply,
// an ACK, a NACK, or an error frame for an unknown command), except that it
// returns an error instead when the response payload exceeds MaxPayload.
// Unsolicited frames (telemetry, boot-complete) are not produced here.
type Dispatcher struct {
	Registry *channel.Registry
	Executor *exec.Executor
	Flash    config.FlashStore
	Limits   config.Limits
	Parser   *Parser
	Serial   string

	Capabilities Capabilities
	Upload       UploadSession

	// Telemetry subscription state, set by CmdTelemetrySubscribe and
	// cleared by CmdTelemetryUnsubscribe (§4.7). TelemetryFlags is the
	// client's requested bitmap of fields; TelemetryRateHintMs is its
	// requested broadcast period. The transport loop driving
	// CmdTelemetryData reads these to decide whether, and how often,
	// to send.
	TelemetrySubscribed bool
	TelemetryFlags      uint16
	TelemetryRateHintMs uint16
}

// NewDispatcher builds a Dispatcher over the given collaborators.
func NewDispatcher(reg *channel.Registry, e *exec.Executor, flash config.FlashStore, lim config.Limits) *Dispatcher {
	return &Dispatcher{Registry: reg, Executor: e, Flash: flash, Limits: lim, Parser: NewParser()}
}

// Handle processes one request frame and returns the response frame bytes.
func (d *Dispatcher) Handle(f Frame) ([]byte, error) {
	switch f.Cmd {
	case CmdPing:
		return BuildFrame(CmdPong, nil)

	case CmdGetVersion:
		payload := []byte{uint8(d.Capabilities.FirmwareMajor), uint8(d.Capabilities.FirmwareMinor), uint8(d.Capabilities.FirmwarePatch)}
		return BuildFrame(CmdGetVersion, payload)

	case CmdGetSerial:
		return BuildFrame(CmdGetSerial, []byte(d.Serial))

	case CmdGetCapabilities:
		d.Capabilities.FramingErrors = d.Parser.FramingErrors()
		return BuildFrame(CmdCapabilitiesResponse, EncodeCapabilities(d.Capabilities))

	case CmdReadCurrentConfig:
		return d.handleReadCurrentConfig()

	case CmdApplySavedConfig:
		return d.handleApplySavedConfig()

	case CmdSaveCurrentConfig:
		return d.handleSaveCurrentConfig()

	case CmdUploadBlobChunk:
		return d.handleUploadBlobChunk(f.Payload)

	case CmdSetChannelConfig:
		return d.handleSetChannelConfig(f.Payload)

	case CmdGetChannelValue:
		return d.handleGetChannelValue(f.Payload)

	case CmdSetChannelForce:
		return d.handleSetChannelForce(f.Payload)

	case CmdSetOutput:
		return d.handleSetOutputKind(CmdSetOutput, channel.KindPowerOutput, f.Payload)

	case CmdSetPWM:
		return d.handleSetOutputKind(CmdSetPWM, channel.KindPWMOutput, f.Payload)

	case CmdSetHBridge:
		return d.handleSetOutputKind(CmdSetHBridge, channel.KindHBridge, f.Payload)

	case CmdTelemetrySubscribe:
		return d.handleTelemetrySubscribe(f.Payload)

	case CmdTelemetryUnsubscribe:
		return d.handleTelemetryUnsubscribe()

	case CmdRestart:
		return BuildFrame(CmdRestartAck, nil)

	default:
		errFrame, _ := EncodeErrorFrame(config.ErrUnknownCommand, f.Cmd)
		return errFrame, nil
	}
}

func (d *Dispatcher) handleReadCurrentConfig() ([]byte, error) {
	var channels []*channel.Channel
	buf := make([]*channel.Channel, d.Registry.Stats().Total)
	n := d.Registry.List(buf)
	channels = buf[:n]

	blob, err := config.EncodeBlob(channels, 0, 0, false)
	if err != nil {
		return EncodeNack(CmdReadCurrentConfig, err.Error())
	}
	return BuildFrame(CmdReadCurrentConfig, blob)
}

func (d *Dispatcher) handleApplySavedConfig() ([]byte, error) {
	if d.Flash == nil {
		return EncodeNack(CmdApplySavedConfig, "no flash store configured")
	}
	blob, err := d.Flash.Load()
	if err != nil {
		return EncodeNack(CmdApplySavedConfig, err.Error())
	}
	if blob == nil {
		return EncodeNack(CmdApplySavedConfig, "no saved configuration")
	}
	if _, err := config.ApplyBlob(d.Registry, blob, d.Limits); err != nil {
		return EncodeNack(CmdApplySavedConfig, err.Error())
	}
	return EncodeAck(CmdApplySavedConfig)
}

func (d *Dispatcher) handleSaveCurrentConfig() ([]byte, error) {
	if d.Flash == nil {
		return EncodeNack(CmdSaveCurrentConfig, "no flash store configured")
	}

	buf := make([]*channel.Channel, d.Registry.Stats().Total)
	n := d.Registry.List(buf)

	blob, err := config.EncodeBlob(buf[:n], 0, 0, false)
	if err != nil {
		return EncodeNack(CmdSaveCurrentConfig, err.Error())
	}
	if err := d.Flash.Save(blob); err != nil {
		return EncodeNack(CmdSaveCurrentConfig, err.Error())
	}
	return EncodeAck(CmdSaveCurrentConfig)
}

// handleUploadBlobChunk appends one chunk of a chunked configuration blob
// upload (§4.7, §5). The first chunk of a session is distinguished by a
// zero sequence number, which (re)starts the session with the 4-byte total
// size carried in its payload prefix; every chunk after that must carry the
// next sequence number and appends its payload to the in-progress buffer
// (an out-of-sequence chunk is NACKed). Once the full blob has arrived it is
// applied the same way CmdApplySavedConfig applies a loaded blob.
func (d *Dispatcher) handleUploadBlobChunk(payload []byte) ([]byte, error) {
	if len(payload) < 2 {
		return EncodeNack(CmdUploadBlobChunk, "short request")
	}
	seq := le.Uint16(payload[0:2])
	body := payload[2:]

	if seq == 0 {
		if len(body) < 4 {
			return EncodeNack(CmdUploadBlobChunk, "missing total size")
		}
		d.Upload.Begin(int(le.Uint32(body[0:4])))
		body = body[4:]
	}

	complete, err := d.Upload.Chunk(seq, body)
	if err != nil {
		return EncodeNack(CmdUploadBlobChunk, err.Error())
	}
	if !complete {
		return EncodeAck(CmdUploadBlobChunk)
	}

	blob := d.Upload.Buf
	d.Upload.Reset()

	if _, err := config.ApplyBlob(d.Registry, blob, d.Limits); err != nil {
		return EncodeNack(CmdUploadBlobChunk, err.Error())
	}
	return EncodeAck(CmdUploadBlobChunk)
}

func (d *Dispatcher) handleSetChannelConfig(payload []byte) ([]byte, error) {
	ch, _, err := config.DecodeEntry(payload)
	if err != nil {
		return d.channelConfigReply(0, false, err)
	}
	if err := config.ValidateChannel(ch, d.Limits); err != nil {
		return d.channelConfigReply(ch.ID, false, err)
	}
	d.Registry.Unregister(ch.ID)
	if err := d.Registry.Register(ch); err != nil {
		return d.channelConfigReply(ch.ID, false, err)
	}
	return d.channelConfigReply(ch.ID, true, nil)
}

func (d *Dispatcher) channelConfigReply(id channel.ID, success bool, err error) ([]byte, error) {
	payload := make([]byte, 4)
	le.PutUint16(payload[0:2], uint16(id))
	if success {
		payload[2] = 1
	}
	var msg string
	if err != nil {
		if cfgErr, ok := err.(config.Error); ok {
			payload[3] = uint8(cfgErr.Code)
		}
		msg = err.Error()
	}
	payload = append(payload, []byte(msg)...)
	return BuildFrame(CmdSetChannelConfigReply, payload)
}

func (d *Dispatcher) handleGetChannelValue(payload []byte) ([]byte, error) {
	if len(payload) < 2 {
		return EncodeNack(CmdGetChannelValue, "short request")
	}
	id := channel.ID(le.Uint16(payload[0:2]))
	v := d.Registry.GetValue(id)

	out := make([]byte, 6)
	le.PutUint16(out[0:2], uint16(id))
	le.PutUint32(out[2:6], uint32(v))
	return BuildFrame(CmdGetChannelValueReply, out)
}

func (d *Dispatcher) handleSetChannelForce(payload []byte) ([]byte, error) {
	if len(payload) < 6 {
		return EncodeNack(CmdSetChannelForce, "short request")
	}
	id := channel.ID(le.Uint16(payload[0:2]))
	v := int32(le.Uint32(payload[2:6]))
	d.Registry.SetValue(id, v)
	return EncodeAck(CmdSetChannelForce)
}

// handleSetOutputKind drives a runtime value onto a single output channel
// immediately (§4.7's set-output/set-pwm/set-h-bridge family), instead of
// waiting for the next Executor pass: it writes the registry value and
// forwards it straight to the hardware layer the same way Executor's own
// output dispatch does. The target channel must exist and be of the kind
// the command names.
func (d *Dispatcher) handleSetOutputKind(cmd uint8, kind channel.Kind, payload []byte) ([]byte, error) {
	if len(payload) < 6 {
		return EncodeNack(cmd, "short request")
	}
	id := channel.ID(le.Uint16(payload[0:2]))
	v := int32(le.Uint32(payload[2:6]))

	ch := d.Registry.Get(id)
	if ch == nil {
		return EncodeNack(cmd, "unknown channel")
	}
	if ch.Kind != kind {
		return EncodeNack(cmd, "wrong channel kind")
	}

	d.Registry.SetValue(id, v)
	if d.Executor != nil && d.Executor.Writer != nil {
		d.Executor.Writer.WriteOutput(ch.Kind, ch.HWDevice, ch.HWIndex, v)
	}
	return EncodeAck(cmd)
}

// handleTelemetrySubscribe records a client's subscription request: a
// bitmap of the telemetry fields it wants plus a rate hint in milliseconds
// (§4.7). The transport's telemetry loop reads this state to decide
// whether, and how often, to emit CmdTelemetryData frames.
func (d *Dispatcher) handleTelemetrySubscribe(payload []byte) ([]byte, error) {
	if len(payload) < 4 {
		return EncodeNack(CmdTelemetrySubscribe, "short request")
	}
	d.TelemetryFlags = le.Uint16(payload[0:2])
	d.TelemetryRateHintMs = le.Uint16(payload[2:4])
	d.TelemetrySubscribed = true
	return EncodeAck(CmdTelemetrySubscribe)
}

func (d *Dispatcher) handleTelemetryUnsubscribe() ([]byte, error) {
	d.TelemetrySubscribed = false
	d.TelemetryFlags = 0
	d.TelemetryRateHintMs = 0
	return EncodeAck(CmdTelemetryUnsubscribe)
}
