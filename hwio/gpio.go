// Package hwio provides the hardware write/read collaborators that sit
// below the executor's HardwareWriter boundary (§4.6, §6). It is the one
// package allowed to touch real device files.
//
// GPIOWriter plays the role the teacher's ptt.go plays for keying a radio's
// PTT line over a gpiod chip: one or more named GPIO lines, each opened once
// on its first write and driven by channel value thereafter, except here the line set
// is whatever the loaded configuration's PowerOutput/PWMOutput/HBridge
// channels name via hw_device/hw_index instead of a fixed PTT/DCD pair.
package hwio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"github.com/fenwick-systems/pcmcore/channel"
)

// lineKey addresses one GPIO line by its owning chip index and offset
// within that chip, matching the (hw_device, hw_index) pair carried on
// every output channel (§3.1).
type lineKey struct {
	device uint8
	index  uint8
}

// GPIOWriter implements exec.HardwareWriter over a set of gpiocdev lines,
// one per distinct (hw_device, hw_index) pair seen. Lines are opened lazily
// on first write and kept open for the writer's lifetime. Every channel kind
// drives its line high when value is positive and low otherwise; PWMOutput
// channels get the same on/off level, with no duty scaling, since gpiocdev
// exposes no hardware PWM — callers wanting true PWM should route
// through a dedicated PWM chip writer instead and leave this one for
// digital/H-bridge enable lines.
type GPIOWriter struct {
	mu     sync.Mutex
	chips  []string // index i holds the consumer-visible chip name for hw_device i
	lines  map[lineKey]*gpiocdev.Line
	onFail func(err error)
}

// NewGPIOWriter returns a writer that resolves hw_device 0..len(chips)-1 to
// the given gpiod chip names (e.g. "gpiochip0"). onFail, if non-nil, is
// called with any line request or write error instead of panicking —
// hardware faults must not take down the control loop (§6).
func NewGPIOWriter(chips []string, onFail func(error)) *GPIOWriter {
	return &GPIOWriter{
		chips:  chips,
		lines:  make(map[lineKey]*gpiocdev.Line),
		onFail: onFail,
	}
}

// WriteOutput implements exec.HardwareWriter.
func (w *GPIOWriter) WriteOutput(kind channel.Kind, hwDevice, hwIndex uint8, value int32) {
	line, err := w.lineFor(hwDevice, hwIndex)
	if err != nil {
		w.fail(err)
		return
	}

	level := 0
	if value > 0 {
		level = 1
	}
	if err := line.SetValue(level); err != nil {
		w.fail(fmt.Errorf("hwio: set %s line %d: %w", w.chipName(hwDevice), hwIndex, err))
	}
}

func (w *GPIOWriter) lineFor(hwDevice, hwIndex uint8) (*gpiocdev.Line, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := lineKey{device: hwDevice, index: hwIndex}
	if l, ok := w.lines[key]; ok {
		return l, nil
	}

	chip := w.chipName(hwDevice)
	if chip == "" {
		return nil, fmt.Errorf("hwio: hw_device %d has no configured chip", hwDevice)
	}

	l, err := gpiocdev.RequestLine(chip, int(hwIndex), gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("hwio: request %s line %d: %w", chip, hwIndex, err)
	}

	w.lines[key] = l
	return l, nil
}

func (w *GPIOWriter) chipName(hwDevice uint8) string {
	if int(hwDevice) >= len(w.chips) {
		return ""
	}
	return w.chips[hwDevice]
}

func (w *GPIOWriter) fail(err error) {
	if w.onFail != nil {
		w.onFail(err)
	}
}

// Close releases every line the writer has opened.
func (w *GPIOWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var first error
	for key, l := range w.lines {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
		delete(w.lines, key)
	}
	return first
}
