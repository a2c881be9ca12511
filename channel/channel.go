package channel

// Flags carries the per-channel boolean flags (§3.1).
type Flags uint8

const (
	FlagEnabled Flags = 1 << iota
	FlagInverted
	FlagBuiltin
	FlagReadOnly
	FlagHidden
	FlagInFault
)

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Display is the display descriptor every channel carries (§3.1).
type Display struct {
	Unit       string
	DecimalPt  uint8 // decimal places
	DisplayMin int32
	DisplayMax int32
}

// Channel is a named, identifier-addressed node in the runtime registry
// holding a 32-bit signed value and metadata (GLOSSARY). Config is an
// opaque handle into package config's typed records; the registry never
// interprets it, only stores and returns it.
type Channel struct {
	ID    ID
	Name  string // bounded to 31 visible characters, §4.5
	Kind  Kind
	Flags Flags
	HWDevice uint8
	HWIndex  uint8
	Display Display

	Value     int32
	PrevValue int32

	Config any // a config.<Kind>Config value, see package config

	// Workspace is per-channel mutable state for stateful elements
	// (§3.4, GLOSSARY "Workspace"). Owned and type-asserted by package exec.
	Workspace any
}

// Enabled reports whether the channel's FlagEnabled bit is set.
func (c *Channel) Enabled() bool { return c.Flags.Has(FlagEnabled) }

// Reset clears a channel's runtime value and workspace back to zero state,
// used on channel creation, system reset, and explicit per-channel reset
// (§3.4). Config is left untouched.
func (c *Channel) Reset() {
	c.Value = 0
	c.PrevValue = 0
	c.Workspace = nil
	c.Flags &^= FlagInFault
}
