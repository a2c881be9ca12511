package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Limits carries the tunable bounds the validator checks against, shared by
// host-side tooling and the device itself (§4.4: "tunable limits are passed
// as a small struct"). Zero-value Limits is unusable; use DefaultLimits.
type Limits struct {
	MinPWMFreqHz  uint16 `yaml:"min_pwm_freq_hz"`
	MaxPWMFreqHz  uint16 `yaml:"max_pwm_freq_hz"`
	MaxChannels   int    `yaml:"max_channels"`
	MaxDebounceMs uint16 `yaml:"max_debounce_ms"`
	MaxFilterMs   uint16 `yaml:"max_filter_ms"`
	CANBusCount   uint8  `yaml:"can_bus_count"`
}

// DefaultLimits returns the bounds a freshly-provisioned device ships with.
func DefaultLimits() Limits {
	return Limits{
		MinPWMFreqHz:  20,
		MaxPWMFreqHz:  20000,
		MaxChannels:   512,
		MaxDebounceMs: 5000,
		MaxFilterMs:   60000,
		CANBusCount:   2,
	}
}

// LoadLimits reads Limits from a YAML document at path, falling back to
// DefaultLimits for any field the document omits.
func LoadLimits(path string) (Limits, error) {
	l := DefaultLimits()

	data, err := os.ReadFile(path)
	if err != nil {
		return l, fmt.Errorf("config: read limits file: %w", err)
	}
	if err := yaml.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("config: parse limits file: %w", err)
	}
	return l, nil
}
