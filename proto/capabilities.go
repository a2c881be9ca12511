package proto

import "encoding/binary"

// CapabilitiesWireSize is the frozen 64-byte wire size of Capabilities
// (§4.7).
const CapabilitiesWireSize = 64

// EncodeCapabilities serializes c to its 64-byte wire form.
func EncodeCapabilities(c Capabilities) []byte {
	b := make([]byte, CapabilitiesWireSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:4], c.HardwareFlags)
	le.PutUint32(b[4:8], c.SoftwareFlags)
	le.PutUint16(b[8:10], c.MaxChannels)
	le.PutUint16(b[10:12], c.InputChannels)
	le.PutUint16(b[12:14], c.OutputChannels)
	le.PutUint16(b[14:16], c.VirtualChannels)
	le.PutUint32(b[16:20], c.FlashSectorSize)
	le.PutUint32(b[20:24], c.FlashFreeBytes)
	le.PutUint16(b[24:26], c.MaxCurrentMA)
	le.PutUint32(b[26:30], c.FramingErrors)
	b[30] = c.FirmwareMajor
	b[31] = c.FirmwareMinor
	b[32] = c.FirmwarePatch
	return b
}

// DecodeCapabilities parses a 64-byte Capabilities record.
func DecodeCapabilities(b []byte) (Capabilities, bool) {
	if len(b) != CapabilitiesWireSize {
		return Capabilities{}, false
	}
	le := binary.LittleEndian
	return Capabilities{
		HardwareFlags:   le.Uint32(b[0:4]),
		SoftwareFlags:   le.Uint32(b[4:8]),
		MaxChannels:     le.Uint16(b[8:10]),
		InputChannels:   le.Uint16(b[10:12]),
		OutputChannels:  le.Uint16(b[12:14]),
		VirtualChannels: le.Uint16(b[14:16]),
		FlashSectorSize: le.Uint32(b[16:20]),
		FlashFreeBytes:  le.Uint32(b[20:24]),
		MaxCurrentMA:    le.Uint16(b[24:26]),
		FramingErrors:   le.Uint32(b[26:30]),
		FirmwareMajor:   b[30],
		FirmwareMinor:   b[31],
		FirmwarePatch:   b[32],
	}, true
}
