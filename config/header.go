package config

// BlobMagic identifies a configuration blob: "CFG3" (§4.3).
const BlobMagic uint32 = 0x43464733

// CurrentVersion is the blob format version this codec produces (§4.3).
const CurrentVersion uint16 = 2

// FileHeaderSize is the fixed 32-byte file header size (§4.3).
const FileHeaderSize = 32

// ChannelHeaderSize is the fixed 14-byte per-entry channel header size
// (§4.3).
const ChannelHeaderSize = 14

// MaxNameLength bounds a channel's visible name (§3.2, §4.5: "31 visible
// characters").
const MaxNameLength = 31

// Header flags (§4.3).
const (
	HeaderFlagCompressed uint16 = 1 << iota
	HeaderFlagEncrypted
	HeaderFlagPartial
	HeaderFlagDefaultsOnly
)

// FileHeader is the 32-byte blob header (§4.3).
type FileHeader struct {
	Magic        uint32
	Version      uint16
	DeviceType   uint16
	TotalSize    uint32
	CRC32        uint32
	ChannelCount uint16
	Flags        uint16
	UnixTime     uint32
	// 8 reserved bytes, always zero on write, ignored on read.
}

// ChannelHeader is the 14-byte per-entry channel header (§4.3).
type ChannelHeader struct {
	ID           uint16
	Kind         uint8
	Flags        uint8
	HWDevice     uint8
	HWIndex      uint8
	SourceID     uint16
	DefaultValue int32
	NameLength   uint8
	ConfigSize   uint8
}
