package channel

// Kind is the closed enumeration of channel kinds (§3.1). It is a tagged
// union in spirit: each Kind has exactly one associated fixed-size config
// record type in package config.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Inputs.
	KindDigitalInput
	KindAnalogInput
	KindFrequencyInput
	KindCANInput

	// Outputs.
	KindPowerOutput
	KindPWMOutput
	KindHBridge
	KindCANOutput

	// Computed.
	KindTimer
	KindLogic
	KindMath
	KindTable2D
	KindTable3D
	KindFilter
	KindPID
	KindNumber
	KindSwitch
	KindCounter
	KindFlipFlop
	KindHysteresis

	// System.
	KindSystem

	kindCount // sentinel, not a valid kind
)

var kindNames = [kindCount]string{
	KindInvalid:        "invalid",
	KindDigitalInput:   "digital_input",
	KindAnalogInput:    "analog_input",
	KindFrequencyInput: "frequency_input",
	KindCANInput:       "can_input",
	KindPowerOutput:    "power_output",
	KindPWMOutput:      "pwm_output",
	KindHBridge:        "h_bridge",
	KindCANOutput:      "can_output",
	KindTimer:          "timer",
	KindLogic:          "logic",
	KindMath:           "math",
	KindTable2D:        "table_2d",
	KindTable3D:        "table_3d",
	KindFilter:         "filter",
	KindPID:            "pid",
	KindNumber:         "number",
	KindSwitch:         "switch",
	KindCounter:        "counter",
	KindFlipFlop:       "flip_flop",
	KindHysteresis:     "hysteresis",
	KindSystem:         "system",
}

func (k Kind) String() string {
	if k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the closed enumeration's defined members.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// IsInput reports whether k is a hardware-bound input kind.
func (k Kind) IsInput() bool {
	switch k {
	case KindDigitalInput, KindAnalogInput, KindFrequencyInput, KindCANInput:
		return true
	default:
		return false
	}
}

// IsOutput reports whether k is a hardware-bound output kind.
func (k Kind) IsOutput() bool {
	switch k {
	case KindPowerOutput, KindPWMOutput, KindHBridge, KindCANOutput:
		return true
	default:
		return false
	}
}

// IsComputed reports whether k is evaluated by the executor each pass.
func (k Kind) IsComputed() bool {
	switch k {
	case KindTimer, KindLogic, KindMath, KindTable2D, KindTable3D, KindFilter,
		KindPID, KindNumber, KindSwitch, KindCounter, KindFlipFlop, KindHysteresis:
		return true
	default:
		return false
	}
}
