package config

import (
	"github.com/fenwick-systems/pcmcore/channel"
)

// ValidateChannel checks one channel's identity and type-specific
// configuration against lim, returning the first violation found as an
// Error naming the offending field, its actual value, and its expected
// bounds (§4.4). A nil return means the channel is well-formed.
func ValidateChannel(ch *channel.Channel, lim Limits) error {
	if !ch.ID.Valid() {
		return Error{Code: ErrInvalidChannelID, Field: "id", Actual: int64(ch.ID)}
	}
	if !ch.Kind.Valid() {
		return Error{Code: ErrInvalidKind, Field: "kind", Actual: int64(ch.Kind)}
	}
	if len(ch.Name) > MaxNameLength {
		return Error{Code: ErrNameTooLong, Field: "name", Actual: int64(len(ch.Name)), Max: MaxNameLength}
	}

	switch c := ch.Config.(type) {
	case DigitalInputConfig:
		return validateDigitalInput(c, lim)
	case AnalogInputConfig:
		return validateAnalogInput(c, lim)
	case FrequencyInputConfig:
		return validateFrequencyInput(c)
	case CANInputConfig:
		return validateCANInput(c, lim)
	case PowerOutputConfig:
		return validatePowerOutput(c, lim)
	case PWMOutputConfig:
		return validatePWMOutput(c, lim)
	case HBridgeConfig:
		return validateHBridge(c, lim)
	case CANOutputConfig:
		return validateCANOutput(c, lim)
	case TimerConfig:
		return validateTimer(c)
	case LogicConfig:
		return validateLogic(c)
	case MathConfig:
		return validateMath(c)
	case Table2DConfig:
		return validateTable2D(c)
	case Table3DConfig:
		return validateTable3D(c)
	case FilterConfig:
		return validateFilter(c)
	case PIDConfig:
		return validatePID(c)
	case NumberConfig:
		return validateNumber(c)
	case SwitchConfig:
		return validateSwitch(c)
	case CounterConfig:
		return validateCounter(c)
	case FlipFlopConfig:
		return validateFlipFlop(c)
	case HysteresisConfig:
		return validateHysteresis(c)
	default:
		return nil
	}
}

// sourceID checks a single referenced channel id field, which §3.3 allows
// to be either a valid channel or the CH_REF_NONE sentinel.
func sourceID(id channel.ID, field string) error {
	if !id.ValidOrNone() {
		return Error{Code: ErrInvalidSourceID, Field: field, Actual: int64(id)}
	}
	return nil
}

func validateDigitalInput(c DigitalInputConfig, lim Limits) error {
	if c.DebounceMs > lim.MaxDebounceMs {
		return Error{Code: ErrInvalidDebounce, Field: "debounce_ms", Actual: int64(c.DebounceMs), Max: int64(lim.MaxDebounceMs)}
	}
	return nil
}

func validateAnalogInput(c AnalogInputConfig, lim Limits) error {
	if c.FilterMs > lim.MaxFilterMs {
		return Error{Code: ErrInvalidFilterMs, Field: "filter_ms", Actual: int64(c.FilterMs), Max: int64(lim.MaxFilterMs)}
	}
	if c.RawMin >= c.RawMax {
		return Error{Code: ErrZeroDivisor, Field: "raw_range", Actual: int64(c.RawMax - c.RawMin)}
	}
	return nil
}

func validateFrequencyInput(c FrequencyInputConfig) error {
	if c.MinHz >= c.MaxHz {
		return Error{Code: ErrZeroDivisor, Field: "hz_range", Actual: int64(c.MaxHz) - int64(c.MinHz)}
	}
	if c.Scale.Den == 0 {
		return Error{Code: ErrZeroDivisor, Field: "scale.den", Actual: 0}
	}
	return nil
}

func validateCANInput(c CANInputConfig, lim Limits) error {
	if c.Bus >= lim.CANBusCount {
		return Error{Code: ErrInvalidCANBus, Field: "bus", Actual: int64(c.Bus), Max: int64(lim.CANBusCount) - 1}
	}
	maxID := int64(0x7FF)
	if c.Extended {
		maxID = 0x1FFFFFFF
	}
	if int64(c.CANID) > maxID {
		return Error{Code: ErrInvalidCANID, Field: "can_id", Actual: int64(c.CANID), Max: maxID}
	}
	if int(c.StartBit)+int(c.BitLength) > 64 {
		return Error{Code: ErrBitPlacement, Field: "bit_length", Actual: int64(c.StartBit) + int64(c.BitLength), Max: 64}
	}
	if c.Scale.Den == 0 {
		return Error{Code: ErrZeroDivisor, Field: "scale.den", Actual: 0}
	}
	return nil
}

func validatePowerOutput(c PowerOutputConfig, lim Limits) error {
	if c.PWMFreqHz != 0 && (c.PWMFreqHz < lim.MinPWMFreqHz || c.PWMFreqHz > lim.MaxPWMFreqHz) {
		return Error{Code: ErrInvalidPWMFreq, Field: "pwm_freq_hz", Actual: int64(c.PWMFreqHz), Min: int64(lim.MinPWMFreqHz), Max: int64(lim.MaxPWMFreqHz)}
	}
	return nil
}

func validatePWMOutput(c PWMOutputConfig, lim Limits) error {
	if c.FreqHz < lim.MinPWMFreqHz || c.FreqHz > lim.MaxPWMFreqHz {
		return Error{Code: ErrInvalidPWMFreq, Field: "freq_hz", Actual: int64(c.FreqHz), Min: int64(lim.MinPWMFreqHz), Max: int64(lim.MaxPWMFreqHz)}
	}
	if c.MinDuty > c.MaxDuty || c.MaxDuty > 10000 {
		return Error{Code: ErrInvalidDutyRange, Field: "duty_range", Actual: int64(c.MaxDuty), Min: int64(c.MinDuty), Max: 10000}
	}
	if c.DefaultDuty < c.MinDuty || c.DefaultDuty > c.MaxDuty {
		return Error{Code: ErrInvalidDutyRange, Field: "default_duty", Actual: int64(c.DefaultDuty), Min: int64(c.MinDuty), Max: int64(c.MaxDuty)}
	}
	return nil
}

func validateHBridge(c HBridgeConfig, lim Limits) error {
	if c.PWMFreqHz < lim.MinPWMFreqHz || c.PWMFreqHz > lim.MaxPWMFreqHz {
		return Error{Code: ErrInvalidPWMFreq, Field: "pwm_freq_hz", Actual: int64(c.PWMFreqHz), Min: int64(lim.MinPWMFreqHz), Max: int64(lim.MaxPWMFreqHz)}
	}
	if c.DeadbandPct > 100 {
		return Error{Code: ErrInvalidDutyRange, Field: "deadband_pct", Actual: int64(c.DeadbandPct), Max: 100}
	}
	return nil
}

func validateCANOutput(c CANOutputConfig, lim Limits) error {
	if c.Bus >= lim.CANBusCount {
		return Error{Code: ErrInvalidCANBus, Field: "bus", Actual: int64(c.Bus), Max: int64(lim.CANBusCount) - 1}
	}
	if c.DLC == 0 || c.DLC > 8 {
		return Error{Code: ErrInvalidDLC, Field: "dlc", Actual: int64(c.DLC), Min: 1, Max: 8}
	}
	if int(c.StartBit)+int(c.BitLength) > int(c.DLC)*8 {
		return Error{Code: ErrBitPlacement, Field: "bit_length", Actual: int64(c.StartBit) + int64(c.BitLength), Max: int64(c.DLC) * 8}
	}
	if c.Scale.Den == 0 {
		return Error{Code: ErrZeroDivisor, Field: "scale.den", Actual: 0}
	}
	return nil
}

func validateLogic(c LogicConfig) error {
	if c.InputCount < 1 || c.InputCount > LogicMaxInputs {
		return Error{Code: ErrInsufficientInputs, Field: "input_count", Actual: int64(c.InputCount), Min: 1, Max: LogicMaxInputs}
	}
	for i := 0; i < int(c.InputCount); i++ {
		if err := sourceID(c.Inputs[i], "inputs"); err != nil {
			return err
		}
	}
	return nil
}

func validateMath(c MathConfig) error {
	minInputs := int64(1)
	switch c.Operation {
	case MathAdd, MathSub, MathMul, MathDiv, MathMin, MathMax, MathAvg, MathLerp:
		minInputs = 2
	}
	if int64(c.InputCount) < minInputs || c.InputCount > MathMaxInputs {
		return Error{Code: ErrInsufficientInputs, Field: "input_count", Actual: int64(c.InputCount), Min: minInputs, Max: MathMaxInputs}
	}
	if c.Operation == MathDiv && c.Scale.Den == 0 {
		return Error{Code: ErrZeroDivisor, Field: "scale.den", Actual: 0}
	}
	for i := 0; i < int(c.InputCount); i++ {
		if err := sourceID(c.Inputs[i], "inputs"); err != nil {
			return err
		}
	}
	return nil
}

func validateTable2D(c Table2DConfig) error {
	if c.PointCount < 2 || c.PointCount > Table2DMaxPoints {
		return Error{Code: ErrNonMonotonicTable, Field: "point_count", Actual: int64(c.PointCount), Min: 2, Max: Table2DMaxPoints}
	}
	for i := 1; i < int(c.PointCount); i++ {
		if c.X[i] <= c.X[i-1] {
			return Error{Code: ErrNonMonotonicTable, Field: "x", Actual: int64(c.X[i]), Min: int64(c.X[i-1]) + 1}
		}
	}
	return sourceID(c.InputID, "input_id")
}

func validateTable3D(c Table3DConfig) error {
	if c.XSize < 2 || c.XSize > Table3DMaxAxis || c.YSize < 2 || c.YSize > Table3DMaxAxis {
		return Error{Code: ErrNonMonotonicTable, Field: "axis_size", Actual: int64(c.XSize), Min: 2, Max: Table3DMaxAxis}
	}
	for i := 1; i < int(c.XSize); i++ {
		if c.X[i] <= c.X[i-1] {
			return Error{Code: ErrNonMonotonicTable, Field: "x", Actual: int64(c.X[i]), Min: int64(c.X[i-1]) + 1}
		}
	}
	for i := 1; i < int(c.YSize); i++ {
		if c.Y[i] <= c.Y[i-1] {
			return Error{Code: ErrNonMonotonicTable, Field: "y", Actual: int64(c.Y[i]), Min: int64(c.Y[i-1]) + 1}
		}
	}
	if err := sourceID(c.InputXID, "input_x_id"); err != nil {
		return err
	}
	return sourceID(c.InputYID, "input_y_id")
}

func validateFilter(c FilterConfig) error {
	switch c.FilterKind {
	case FilterSMA, FilterMedian:
		if c.WindowSize < 1 || c.WindowSize > FilterMaxSamples {
			return Error{Code: ErrInvalidFilterWindow, Field: "window_size", Actual: int64(c.WindowSize), Min: 1, Max: FilterMaxSamples}
		}
	case FilterEMA:
		if c.Alpha == 0 {
			return Error{Code: ErrInvalidFilterWindow, Field: "alpha", Actual: 0, Min: 1, Max: 255}
		}
	case FilterLPF:
		if c.TimeConstant == 0 {
			return Error{Code: ErrInvalidFilterWindow, Field: "time_constant", Actual: 0, Min: 1}
		}
	}
	return sourceID(c.InputID, "input_id")
}

func validatePID(c PIDConfig) error {
	if c.OutputMin >= c.OutputMax {
		return Error{Code: ErrPIDBoundInversion, Field: "output_range", Actual: int64(c.OutputMax) - int64(c.OutputMin)}
	}
	if c.IntegralMin >= c.IntegralMax {
		return Error{Code: ErrPIDBoundInversion, Field: "integral_range", Actual: int64(c.IntegralMax) - int64(c.IntegralMin)}
	}
	if err := sourceID(c.SetpointID, "setpoint_id"); err != nil {
		return err
	}
	return sourceID(c.FeedbackID, "feedback_id")
}

func validateNumber(c NumberConfig) error {
	if c.Min >= c.Max {
		return Error{Code: ErrNumberOutOfRange, Field: "range", Actual: int64(c.Max) - int64(c.Min)}
	}
	if c.Value < c.Min || c.Value > c.Max {
		return Error{Code: ErrNumberOutOfRange, Field: "value", Actual: int64(c.Value), Min: int64(c.Min), Max: int64(c.Max)}
	}
	return nil
}

func validateSwitch(c SwitchConfig) error {
	if c.CaseCount == 0 {
		return Error{Code: ErrSwitchNoCases, Field: "case_count", Actual: 0, Min: 1}
	}
	if c.CaseCount > SwitchMaxCases {
		return Error{Code: ErrSwitchNoCases, Field: "case_count", Actual: int64(c.CaseCount), Max: SwitchMaxCases}
	}
	return sourceID(c.SelectorID, "selector_id")
}

func validateCounter(c CounterConfig) error {
	if c.IncTriggerID == channel.RefNone && c.DecTriggerID == channel.RefNone && c.ResetTriggerID == channel.RefNone {
		return Error{Code: ErrCounterNoTriggers, Field: "triggers", Actual: 0}
	}
	if c.Min >= c.Max {
		return Error{Code: ErrNumberOutOfRange, Field: "range", Actual: int64(c.Max) - int64(c.Min)}
	}
	if err := sourceID(c.IncTriggerID, "inc_trigger_id"); err != nil {
		return err
	}
	if err := sourceID(c.DecTriggerID, "dec_trigger_id"); err != nil {
		return err
	}
	return sourceID(c.ResetTriggerID, "reset_trigger_id")
}

func validateTimer(c TimerConfig) error {
	return sourceID(c.TriggerID, "trigger_id")
}

func validateFlipFlop(c FlipFlopConfig) error {
	if err := sourceID(c.InputS, "input_s"); err != nil {
		return err
	}
	if err := sourceID(c.InputR, "input_r"); err != nil {
		return err
	}
	return sourceID(c.Clock, "clock")
}

func validateHysteresis(c HysteresisConfig) error {
	return sourceID(c.InputID, "input_id")
}
