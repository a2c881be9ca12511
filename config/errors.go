package config

import "fmt"

// CoreErrorCode is the closed, single-byte-on-the-wire error enum shared by
// the codec, the validator, and (via package proto) the wire protocol (§7).
type CoreErrorCode uint8

const (
	ErrNone CoreErrorCode = iota
	ErrInvalidLength
	ErrInvalidChannelID
	ErrInvalidConfigKind
	ErrConfigSizeMismatch
	ErrCrcMismatch
	ErrVersionMismatch
	ErrUnknownCommand
	ErrBusy
	ErrBufferTooSmall
	// Validator-specific codes (§4.4) start here.
	ErrInvalidKind
	ErrNameTooLong
	ErrInvalidSourceID
	ErrInvalidDebounce
	ErrInvalidFilterMs
	ErrInvalidCANBus
	ErrInvalidCANID
	ErrInvalidDLC
	ErrBitPlacement
	ErrZeroDivisor
	ErrInvalidPWMFreq
	ErrInvalidDutyRange
	ErrInsufficientInputs
	ErrNonMonotonicTable
	ErrInvalidFilterWindow
	ErrPIDBoundInversion
	ErrCounterNoTriggers
	ErrSwitchNoCases
	ErrNumberOutOfRange
)

var errorCodeNames = map[CoreErrorCode]string{
	ErrNone:                "none",
	ErrInvalidLength:       "invalid_length",
	ErrInvalidChannelID:    "invalid_channel_id",
	ErrInvalidConfigKind:   "invalid_config_kind",
	ErrConfigSizeMismatch:  "config_size_mismatch",
	ErrCrcMismatch:         "crc_mismatch",
	ErrVersionMismatch:     "version_mismatch",
	ErrUnknownCommand:      "unknown_command",
	ErrBusy:                "busy",
	ErrBufferTooSmall:      "buffer_too_small",
	ErrInvalidKind:         "invalid_kind",
	ErrNameTooLong:         "name_too_long",
	ErrInvalidSourceID:     "invalid_source_id",
	ErrInvalidDebounce:     "invalid_debounce",
	ErrInvalidFilterMs:     "invalid_filter_ms",
	ErrInvalidCANBus:       "invalid_can_bus",
	ErrInvalidCANID:        "invalid_can_id",
	ErrInvalidDLC:          "invalid_dlc",
	ErrBitPlacement:        "bit_placement_exceeds_payload",
	ErrZeroDivisor:         "zero_divisor",
	ErrInvalidPWMFreq:      "invalid_pwm_freq",
	ErrInvalidDutyRange:    "invalid_duty_range",
	ErrInsufficientInputs:  "insufficient_inputs",
	ErrNonMonotonicTable:   "non_monotonic_table",
	ErrInvalidFilterWindow: "invalid_filter_window",
	ErrPIDBoundInversion:   "pid_bound_inversion",
	ErrCounterNoTriggers:   "counter_no_triggers",
	ErrSwitchNoCases:       "switch_no_cases",
	ErrNumberOutOfRange:    "number_out_of_range",
}

func (c CoreErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("error(%d)", uint8(c))
}

// Error carries a precise validator/codec failure: the error kind, the
// offending field name, its actual value, and the expected bounds (§4.4,
// §7: "error code + field name + actual value + expected bounds").
type Error struct {
	Code     CoreErrorCode
	Field    string
	Actual   int64
	Min, Max int64
}

func (e Error) Error() string {
	if e.Field == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: field %q actual=%d expected=[%d,%d]", e.Code, e.Field, e.Actual, e.Min, e.Max)
}
