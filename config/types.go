// Package config implements the binary configuration codec and validator
// (spec §4.3, §4.4): typed per-kind configuration records, a packed blob
// format with a CRC-32'd header, and a pure validation function family.
package config

import "github.com/fenwick-systems/pcmcore/channel"

// Rational is an integer scale factor num/den (§3.2, §3.3: "rational-scale
// denominators must be non-zero"). Both fields are 16-bit on the wire,
// matching the per-kind byte budgets in §3.2.
type Rational struct {
	Num int16
	Den int16
}

// DigitalInputConfig is the 4-byte digital input config record (§3.2).
type DigitalInputConfig struct {
	ActiveHigh bool
	UsePullup  bool
	DebounceMs uint16
}

// AnalogInputConfig is the 20-byte analog input config record (§3.2).
type AnalogInputConfig struct {
	RawMin, RawMax       int32
	ScaledMin, ScaledMax int32
	FilterMs             uint16
	FilterKind           uint8
	SampleCount          uint8
}

// Edge modes shared by frequency input and counter configs.
const (
	EdgeRising uint8 = iota
	EdgeFalling
	EdgeEither
)

// FrequencyInputConfig is the 20-byte frequency input config record (§3.2).
type FrequencyInputConfig struct {
	MinHz, MaxHz      uint32
	TimeoutMs         uint16
	EdgeMode          uint8
	PulsesPerRevFixed uint16 // fixed-point pulses-per-revolution
	Scale             Rational
}

// ByteOrder values for CAN signal extraction.
const (
	ByteOrderBigEndian uint8 = iota
	ByteOrderLittleEndian
)

// CANInputConfig is the 18-byte CAN input config record (§3.2).
type CANInputConfig struct {
	CANID     uint32
	Extended  bool
	Bus       uint8
	StartBit  uint8
	BitLength uint8
	ByteOrder uint8
	Signed    bool
	Scale     Rational
	Offset    int32
	TimeoutMs uint16
}

// PowerOutputConfig is the 12-byte power output config record (§3.2).
type PowerOutputConfig struct {
	CurrentLimitMA uint16
	InrushLimitMA  uint16
	InrushWindowMs uint16
	RetryCount     uint8
	RetryDelayMs   uint8
	PWMFreqHz      uint16
	SoftStartMs    uint8
	Flags          uint8
}

// PWMOutputConfig is the 10-byte PWM output config record (§3.2). Duty
// fields use the fixed-point scale 10000 = 100.0% (§3.3).
type PWMOutputConfig struct {
	FreqHz      uint16
	MinDuty     uint16
	MaxDuty     uint16
	DefaultDuty uint16
	Invert      bool
}

// BrakeMode values for H-bridge outputs.
const (
	BrakeCoast uint8 = iota
	BrakeActive
)

// HBridgeConfig is the 12-byte H-bridge config record (§3.2). Signed
// command values: positive = forward, negative = reverse, zero = coast
// (§3.3).
type HBridgeConfig struct {
	PWMFreqHz      uint16
	CurrentLimitMA uint16
	AccelRate      uint16
	DecelRate      uint16
	DeadbandPct    uint8
	BrakeMode      uint8
}

// CANOutputConfig is the 18-byte CAN output config record (§3.2).
type CANOutputConfig struct {
	CANID     uint32
	Extended  bool
	Bus       uint8
	DLC       uint8
	StartBit  uint8
	BitLength uint8
	PeriodMs  uint16
	Scale     Rational
	Offset    int32
}

// Timer modes (§4.2, §4.9).
const (
	TimerDelayOn uint8 = iota
	TimerDelayOff
	TimerOneShot
	TimerBlink
)

// Trigger modes shared by Timer and Counter configs.
const (
	TriggerLevel uint8 = iota
	TriggerRisingEdge
	TriggerFallingEdge
	TriggerEitherEdge
)

// TimerConfig is the 16-byte timer config record (§3.2, §4.2, §4.9).
type TimerConfig struct {
	Mode        uint8
	TriggerMode uint8
	TriggerID   channel.ID
	DelayMs     uint32
	BlinkOnMs   uint16
	BlinkOffMs  uint16
	AutoReset   bool
}

// Logic operations (§4.1).
const (
	LogicAND uint8 = iota
	LogicOR
	LogicXOR
	LogicNAND
	LogicNOR
	LogicGT
	LogicGE
	LogicLT
	LogicLE
	LogicEQ
	LogicNE
	LogicInRange
	LogicOutsideRange
)

// LogicMaxInputs bounds the input count (§3.3: "[1, 8]").
const LogicMaxInputs = 8

// LogicConfig is the 24-byte logic config record (§3.2, §4.1).
type LogicConfig struct {
	Operation    uint8
	InputCount   uint8
	Inputs       [LogicMaxInputs]channel.ID
	CompareValue int32
	InvertOutput bool
}

// Math operations (§4.1).
const (
	MathAdd uint8 = iota
	MathSub
	MathMul
	MathDiv
	MathMin
	MathMax
	MathAvg
	MathClamp
	MathMap
	MathScale
	MathLerp
)

// MathMaxInputs bounds the input count (§3.3: "[1, 8]").
const MathMaxInputs = 8

// MathConfig is the 32-byte math config record (§3.2, §4.1).
type MathConfig struct {
	Operation  uint8
	InputCount uint8
	Inputs     [MathMaxInputs]channel.ID
	Constant   int32
	ClampMin   int16
	ClampMax   int16
	Scale      Rational
}

// Table2DMaxPoints bounds the point count (§3.2: "2..=16").
const Table2DMaxPoints = 16

// Table2DConfig is the 68-byte 1-D table config record (§3.2, §4.1).
type Table2DConfig struct {
	InputID    channel.ID
	PointCount uint8
	X          [Table2DMaxPoints]int16
	Y          [Table2DMaxPoints]int16
}

// Table3DMaxAxis bounds each axis size (§3.2: "2..=8").
const Table3DMaxAxis = 8

// Table3DConfig is the 168-byte 2-D table config record (§3.2).
type Table3DConfig struct {
	InputXID, InputYID channel.ID
	XSize, YSize       uint8
	X                  [Table3DMaxAxis]int16
	Y                  [Table3DMaxAxis]int16
	Z                  [Table3DMaxAxis][Table3DMaxAxis]int16
}

// Filter kinds (§4.2).
const (
	FilterSMA uint8 = iota
	FilterEMA
	FilterLPF
	FilterMedian
	FilterRateLimit
	FilterDebounce
)

// FilterMaxSamples bounds SMA/median window size (§4.2).
const FilterMaxSamples = 32

// FilterConfig is the 8-byte filter config record (§3.2, §4.2).
type FilterConfig struct {
	InputID      channel.ID
	FilterKind   uint8
	WindowSize   uint8
	TimeConstant uint16 // ms, LPF tau
	Alpha        uint8  // EMA alpha, 1..255
}

// PIDConfig is the 22-byte PID config record (§3.2, §4.2). Gains and
// bounds are scaled integers (int16 on the wire).
type PIDConfig struct {
	SetpointID, FeedbackID   channel.ID
	Kp, Ki, Kd               int16
	OutputMin, OutputMax     int16
	IntegralMin, IntegralMax int16
	Deadband                 int16
	DOnMeasurement           bool
}

// NumberConfig is the 20-byte constant/tunable-number config record (§3.2).
type NumberConfig struct {
	Value, Min, Max, Step int32
	ReadOnly              bool
	PersistOnChange       bool
}

// Switch modes (§3.2).
const (
	SwitchValueMatch uint8 = iota
	SwitchRangeMatch
	SwitchIndex
)

// SwitchMaxCases bounds the case count (§3.2: "up to 8 cases").
const SwitchMaxCases = 8

// SwitchCase is one case of a Switch config (match value/range start, max of
// range, and result value).
type SwitchCase struct {
	Match  int32
	Max    int32
	Result int32
}

// SwitchConfig is the 104-byte switch/selector config record (§3.2).
type SwitchConfig struct {
	SelectorID channel.ID
	Mode       uint8
	CaseCount  uint8
	Cases      [SwitchMaxCases]SwitchCase
	Default    int32
}

// CounterConfig is the 18-byte counter config record (§3.2, §4.2).
type CounterConfig struct {
	IncTriggerID, DecTriggerID, ResetTriggerID channel.ID
	Initial, Min, Max, Step                     int16
	Wrap                                         bool
	Mode                                         uint8 // TriggerLevel / edge modes
}

// FlipFlop variants (§3.2, §4.2).
const (
	FlipFlopSR uint8 = iota
	FlipFlopD
	FlipFlopT
	FlipFlopJK
	FlipFlopSRLatch
	FlipFlopDLatch
)

// FlipFlopConfig is the 12-byte flip-flop config record (§3.2, §4.2).
// InputS/InputR carry the S/R (or D/unused, or J/K) inputs; Clock carries
// the clock input for edge-triggered variants (D, T, JK).
type FlipFlopConfig struct {
	Variant        uint8
	InputS, InputR channel.ID
	Clock          channel.ID
	Initial        bool
}

// Hysteresis variants (§4.2).
const (
	HysteresisSchmitt uint8 = iota
	HysteresisWindow
	HysteresisMultilevel
)

// HysteresisConfig is the 12-byte hysteresis config record (§3.2, §4.2).
type HysteresisConfig struct {
	InputID                     channel.ID
	Variant                     uint8
	Invert                      bool
	ThresholdLow, ThresholdHigh int32
}
