package config

import "github.com/fenwick-systems/pcmcore/channel"

// WireSize returns the frozen, build-asserted byte size of kind's
// type-specific configuration record (§3.2). Returns 0 for a kind with no
// configuration record (system channels carry none).
func WireSize(k channel.Kind) int {
	switch k {
	case channel.KindDigitalInput:
		return 4
	case channel.KindAnalogInput:
		return 20
	case channel.KindFrequencyInput:
		return 20
	case channel.KindCANInput:
		return 18
	case channel.KindPowerOutput:
		return 12
	case channel.KindPWMOutput:
		return 10
	case channel.KindHBridge:
		return 12
	case channel.KindCANOutput:
		return 18
	case channel.KindTimer:
		return 16
	case channel.KindLogic:
		return 24
	case channel.KindMath:
		return 32
	case channel.KindTable2D:
		return 68
	case channel.KindTable3D:
		return 168
	case channel.KindFilter:
		return 8
	case channel.KindPID:
		return 22
	case channel.KindNumber:
		return 20
	case channel.KindSwitch:
		return 104
	case channel.KindCounter:
		return 18
	case channel.KindFlipFlop:
		return 12
	case channel.KindHysteresis:
		return 12
	default:
		return 0
	}
}
