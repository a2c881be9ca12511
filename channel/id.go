// Package channel implements the channel type system and the runtime
// registry: identity, values, flags, and lookup (spec §3.1, §4.5).
package channel

import "fmt"

// ID is the 16-bit channel identifier. Reserved ranges are fixed by spec §3.1.
type ID uint16

// Reserved ID ranges and sentinels.
const (
	IDInvalid ID = 0 // sentinel: "no reference"

	IDInputMin  ID = 1
	IDInputMax  ID = 99
	IDOutputMin ID = 100
	IDOutputMax ID = 199
	IDVirtMin   ID = 200
	IDVirtMax   ID = 999
	IDSystemMin ID = 1000
	IDSystemMax ID = 1023

	// RefNone marks an optional config field as "no channel referenced".
	RefNone ID = 0xFFFF
)

// System channel IDs maintained by the hardware layer (§3.1 "etc.").
const (
	IDBatteryVoltage ID = IDSystemMin + iota
	IDTotalCurrent
	IDMCUTemperature
	IDBoardTemperature
	IDUptimeSeconds
	IDStatusBits
	IDConstantZero
	IDConstantOne
)

// IsPhysicalInput reports whether id falls in the hardware input range.
func (id ID) IsPhysicalInput() bool { return id >= IDInputMin && id <= IDInputMax }

// IsPhysicalOutput reports whether id falls in the hardware output range.
func (id ID) IsPhysicalOutput() bool { return id >= IDOutputMin && id <= IDOutputMax }

// IsVirtual reports whether id falls in the computed/virtual channel range.
func (id ID) IsVirtual() bool { return id >= IDVirtMin && id <= IDVirtMax }

// IsSystem reports whether id falls in the read-only system channel range.
func (id ID) IsSystem() bool { return id >= IDSystemMin && id <= IDSystemMax }

// IsPhysical reports whether id is hardware-bound, input or output.
func (id ID) IsPhysical() bool { return id.IsPhysicalInput() || id.IsPhysicalOutput() }

// Valid reports whether id is a real, in-range channel identifier (not the
// invalid sentinel and not RefNone).
func (id ID) Valid() bool {
	return id != IDInvalid && id != RefNone &&
		(id.IsPhysicalInput() || id.IsPhysicalOutput() || id.IsVirtual() || id.IsSystem())
}

// ValidOrNone reports whether id is either Valid or the RefNone sentinel —
// the rule applied to optional reference fields in configuration (§3.3).
func (id ID) ValidOrNone() bool {
	return id == RefNone || id.Valid()
}

func (id ID) String() string {
	switch {
	case id == IDInvalid:
		return "invalid"
	case id == RefNone:
		return "none"
	default:
		return fmt.Sprintf("ch%d", uint16(id))
	}
}
