// Package telemetry implements the variable-layout telemetry packet codec
// (spec §4.8): a fixed 20-byte header followed by optional sections keyed
// by a 16-bit flags field.
package telemetry

import (
	"encoding/binary"
	"errors"
)

var le = binary.LittleEndian

var errShortHeader = errors.New("telemetry: packet shorter than header")

// Section flags (§4.8).
const (
	FlagADC      uint16 = 0x0001
	FlagOutputs  uint16 = 0x0002
	FlagHBridge  uint16 = 0x0004
	FlagDIN      uint16 = 0x0008
	FlagVirtuals uint16 = 0x0010
	FlagFaults   uint16 = 0x0020
	FlagCurrents uint16 = 0x0040
	FlagExtended uint16 = 0x0080
)

// HeaderSize is the fixed 20-byte telemetry header size (§4.8).
const HeaderSize = 20

// VirtualMax bounds the number of virtual-channel entries a packet may
// carry; a larger count in the wire packet is clamped to this (§4.8).
const VirtualMax = 64

// Header is the fixed portion of every telemetry packet (§4.8).
type Header struct {
	StreamCounter      uint32
	TimestampMs        uint32
	InputVoltageMV     uint16
	MCUTemperatureDeci int16
	BoardTempDeci      int16
	TotalCurrentMA     uint32
	Flags              uint16
}

// HBridgeReading is one H-bridge's position/current pair (§4.8).
type HBridgeReading struct {
	Position int16
	Current  uint16
}

// VirtualReading is one virtual channel's id/value pair (§4.8).
type VirtualReading struct {
	ChannelID uint16
	Value     int32
}

// Packet is a fully decoded telemetry packet; only the sections named by
// Header.Flags are meaningful.
type Packet struct {
	Header Header

	ADC          []uint16
	Outputs      []uint8
	HBridges     []HBridgeReading
	DigitalInput uint32
	Virtuals     []VirtualReading
	Status       uint8
	FaultFlags   uint8
	OutCurrents  []uint16

	Truncated bool
}

// Build serializes p into its wire form, in the fixed section order of the
// flag bits (§4.8).
func Build(p Packet) []byte {
	buf := make([]byte, HeaderSize)
	le.PutUint32(buf[0:4], p.Header.StreamCounter)
	le.PutUint32(buf[4:8], p.Header.TimestampMs)
	le.PutUint16(buf[8:10], p.Header.InputVoltageMV)
	le.PutUint16(buf[10:12], uint16(p.Header.MCUTemperatureDeci))
	le.PutUint16(buf[12:14], uint16(p.Header.BoardTempDeci))
	le.PutUint32(buf[14:18], p.Header.TotalCurrentMA)
	le.PutUint16(buf[18:20], p.Header.Flags)

	flags := p.Header.Flags

	if flags&FlagADC != 0 {
		for _, v := range p.ADC {
			var tmp [2]byte
			le.PutUint16(tmp[:], v)
			buf = append(buf, tmp[:]...)
		}
	}
	if flags&FlagOutputs != 0 {
		buf = append(buf, p.Outputs...)
	}
	if flags&FlagHBridge != 0 {
		for _, h := range p.HBridges {
			var tmp [4]byte
			le.PutUint16(tmp[0:2], uint16(h.Position))
			le.PutUint16(tmp[2:4], h.Current)
			buf = append(buf, tmp[:]...)
		}
	}
	if flags&FlagDIN != 0 {
		var tmp [4]byte
		le.PutUint32(tmp[:], p.DigitalInput)
		buf = append(buf, tmp[:]...)
	}
	if flags&FlagVirtuals != 0 {
		count := len(p.Virtuals)
		if count > VirtualMax {
			count = VirtualMax
		}
		var cnt [2]byte
		le.PutUint16(cnt[:], uint16(count))
		buf = append(buf, cnt[:]...)
		for i := 0; i < count; i++ {
			v := p.Virtuals[i]
			var tmp [6]byte
			le.PutUint16(tmp[0:2], v.ChannelID)
			le.PutUint32(tmp[2:6], uint32(v.Value))
			buf = append(buf, tmp[:]...)
		}
	}
	if flags&FlagFaults != 0 {
		buf = append(buf, p.Status, p.FaultFlags, 0, 0)
	}
	if flags&FlagCurrents != 0 {
		for _, v := range p.OutCurrents {
			var tmp [2]byte
			le.PutUint16(tmp[:], v)
			buf = append(buf, tmp[:]...)
		}
	}

	return buf
}

// Dims carries the platform channel counts that the ADC, Outputs, HBridge,
// and Currents sections need to self-decode, since those sections are not
// self-describing on the wire (unlike Virtuals, which carries its own
// count) — they are sized by the board's fixed channel layout, reported
// out-of-band via the capabilities response.
type Dims struct {
	NumADC     int
	NumOutputs int
	NumHBridge int
}

// Parse decodes a telemetry packet against the given platform dims. A
// packet shorter than its flags imply is tolerated: decoding stops at the
// truncation point and Truncated is set (§4.8). A virtuals count exceeding
// VirtualMax is clamped.
func Parse(b []byte, dims Dims) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, errShortHeader
	}

	var p Packet
	p.Header = Header{
		StreamCounter:      le.Uint32(b[0:4]),
		TimestampMs:        le.Uint32(b[4:8]),
		InputVoltageMV:     le.Uint16(b[8:10]),
		MCUTemperatureDeci: int16(le.Uint16(b[10:12])),
		BoardTempDeci:      int16(le.Uint16(b[12:14])),
		TotalCurrentMA:     le.Uint32(b[14:18]),
		Flags:              le.Uint16(b[18:20]),
	}

	off := HeaderSize
	flags := p.Header.Flags

	remaining := func(n int) bool { return off+n <= len(b) }

	if flags&FlagADC != 0 {
		if !remaining(2 * dims.NumADC) {
			p.Truncated = true
			return p, nil
		}
		p.ADC = make([]uint16, dims.NumADC)
		for i := range p.ADC {
			p.ADC[i] = le.Uint16(b[off : off+2])
			off += 2
		}
	}
	if flags&FlagOutputs != 0 {
		if !remaining(dims.NumOutputs) {
			p.Truncated = true
			return p, nil
		}
		p.Outputs = make([]uint8, dims.NumOutputs)
		copy(p.Outputs, b[off:off+dims.NumOutputs])
		off += dims.NumOutputs
	}
	if flags&FlagHBridge != 0 {
		if !remaining(4 * dims.NumHBridge) {
			p.Truncated = true
			return p, nil
		}
		p.HBridges = make([]HBridgeReading, dims.NumHBridge)
		for i := range p.HBridges {
			p.HBridges[i] = HBridgeReading{
				Position: int16(le.Uint16(b[off : off+2])),
				Current:  le.Uint16(b[off+2 : off+4]),
			}
			off += 4
		}
	}
	if flags&FlagDIN != 0 {
		if !remaining(4) {
			p.Truncated = true
			return p, nil
		}
		p.DigitalInput = le.Uint32(b[off : off+4])
		off += 4
	}
	if flags&FlagVirtuals != 0 {
		if !remaining(2) {
			p.Truncated = true
			return p, nil
		}
		count := int(le.Uint16(b[off : off+2]))
		off += 2
		if count > VirtualMax {
			count = VirtualMax
		}
		p.Virtuals = make([]VirtualReading, 0, count)
		for i := 0; i < count; i++ {
			if !remaining(6) {
				p.Truncated = true
				return p, nil
			}
			p.Virtuals = append(p.Virtuals, VirtualReading{
				ChannelID: le.Uint16(b[off : off+2]),
				Value:     int32(le.Uint32(b[off+2 : off+6])),
			})
			off += 6
		}
	}
	if flags&FlagFaults != 0 {
		if !remaining(4) {
			p.Truncated = true
			return p, nil
		}
		p.Status = b[off]
		p.FaultFlags = b[off+1]
		off += 4
	}
	if flags&FlagCurrents != 0 {
		if !remaining(2 * dims.NumOutputs) {
			p.Truncated = true
			return p, nil
		}
		p.OutCurrents = make([]uint16, dims.NumOutputs)
		for i := range p.OutCurrents {
			p.OutCurrents[i] = le.Uint16(b[off : off+2])
			off += 2
		}
	}

	return p, nil
}
