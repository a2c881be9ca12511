package proto

import "github.com/fenwick-systems/pcmcore/config"

// SyncHigh and SyncLow are the two-byte frame preamble (§4.7).
const (
	SyncHigh byte = 0xAA
	SyncLow  byte = 0x55
)

// MaxPayload bounds a single frame's payload length (§4.7: "implementations
// require >= 256 bytes").
const MaxPayload = 512

// Frame is one parsed protocol frame: a command byte and its payload.
type Frame struct {
	Cmd     uint8
	Payload []byte
}

// BuildFrame serializes cmd/payload into the wire frame
// SYNC_H|SYNC_L|CMD|LEN_L|LEN_H|payload|CRC_L|CRC_H (§4.7).
func BuildFrame(cmd uint8, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, config.Error{Code: config.ErrBufferTooSmall, Field: "payload", Actual: int64(len(payload)), Max: MaxPayload}
	}

	out := make([]byte, 0, 7+len(payload))
	out = append(out, SyncHigh, SyncLow, cmd, byte(len(payload)), byte(len(payload)>>8))
	out = append(out, payload...)

	crcBody := out[2:] // [CMD, LEN_L, LEN_H, payload]
	crc := crc16CCITT(crcBody)
	out = append(out, byte(crc), byte(crc>>8))

	return out, nil
}

// parserState enumerates the framer's byte-wise parser states (§4.7, §4.9).
type parserState uint8

const (
	stateSync1 parserState = iota
	stateSync2
	stateCmd
	stateLenL
	stateLenH
	statePayload
	stateCRCL
	stateCRCH
)

// Parser is the byte-wise protocol framer (§4.7). Feed it bytes one at a
// time with PushByte; a true second return value means a frame was completed.
// Malformed frames reset the parser silently (§7: "protocol framing errors
// are silent at the byte level").
type Parser struct {
	state      parserState
	cmd        uint8
	lenL, lenH uint8
	length     int
	payload    []byte
	crcL       uint8
	framingErr uint32
}

// NewParser returns a Parser ready to receive bytes, starting in SYNC1.
func NewParser() *Parser {
	return &Parser{payload: make([]byte, 0, MaxPayload)}
}

// FramingErrors reports the number of malformed frames discarded since
// construction (exposed on the capabilities response per §4.7).
func (p *Parser) FramingErrors() uint32 { return p.framingErr }

func (p *Parser) reset() {
	p.state = stateSync1
	p.payload = p.payload[:0]
}

// PushByte advances the parser by one byte. It returns (frame, true) when b
// completes a CRC-verified frame.
func (p *Parser) PushByte(b byte) (Frame, bool) {
	switch p.state {
	case stateSync1:
		if b == SyncHigh {
			p.state = stateSync2
		}

	case stateSync2:
		switch b {
		case SyncHigh:
			// tolerate noise repeating the first sync byte (§4.7)
		case SyncLow:
			p.state = stateCmd
		default:
			p.state = stateSync1
		}

	case stateCmd:
		p.cmd = b
		p.state = stateLenL

	case stateLenL:
		p.lenL = b
		p.state = stateLenH

	case stateLenH:
		p.lenH = b
		p.length = int(p.lenL) | int(p.lenH)<<8
		if p.length > MaxPayload {
			p.framingErr++
			p.reset()
			return Frame{}, false
		}
		p.payload = p.payload[:0]
		if p.length == 0 {
			p.state = stateCRCL
		} else {
			p.state = statePayload
		}

	case statePayload:
		p.payload = append(p.payload, b)
		if len(p.payload) >= p.length {
			p.state = stateCRCL
		}

	case stateCRCL:
		p.crcL = b
		p.state = stateCRCH

	case stateCRCH:
		got := uint16(p.crcL) | uint16(b)<<8
		want := crcOverFrame(p.cmd, p.lenL, p.lenH, p.payload)

		out := make([]byte, len(p.payload))
		copy(out, p.payload)
		cmd := p.cmd

		p.reset()
		if got != want {
			p.framingErr++
			return Frame{}, false
		}
		return Frame{Cmd: cmd, Payload: out}, true
	}

	return Frame{}, false
}

func crcOverFrame(cmd, lenL, lenH byte, payload []byte) uint16 {
	body := make([]byte, 0, 3+len(payload))
	body = append(body, cmd, lenL, lenH)
	body = append(body, payload...)
	return crc16CCITT(body)
}
