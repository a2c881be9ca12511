package hwio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"github.com/fenwick-systems/pcmcore/channel"
)

// GPIOReader samples a fixed set of gpiod input lines into a channel
// registry's DigitalInput rows, mirroring the writer's lazy-open discipline.
// It samples only when Poll is called rather than being driven by gpiocdev's
// edge-event watch, since the executor's single-threaded pass model (§4.6)
// has no room for an asynchronous callback touching the registry.
type GPIOReader struct {
	mu    sync.Mutex
	chips []string
	lines map[lineKey]*gpiocdev.Line

	onFail func(err error)
}

// NewGPIOReader returns a reader that resolves hw_device 0..len(chips)-1 to
// the given gpiod chip names.
func NewGPIOReader(chips []string, onFail func(error)) *GPIOReader {
	return &GPIOReader{
		chips:  chips,
		lines:  make(map[lineKey]*gpiocdev.Line),
		onFail: onFail,
	}
}

// Sample reads the current level of the line addressed by (hwDevice,
// hwIndex), opening it on first use. It returns 0 on any failure, having
// already reported the error via onFail — a stuck input reads as "off"
// rather than stalling the pass.
func (r *GPIOReader) Sample(hwDevice, hwIndex uint8) int32 {
	line, err := r.lineFor(hwDevice, hwIndex)
	if err != nil {
		r.fail(err)
		return 0
	}

	v, err := line.Value()
	if err != nil {
		r.fail(fmt.Errorf("hwio: read %s line %d: %w", r.chipName(hwDevice), hwIndex, err))
		return 0
	}
	return int32(v)
}

// Poll samples every registered DigitalInput channel whose hw_device is
// covered by r's chip set and writes the result into reg.
func (r *GPIOReader) Poll(reg *channel.Registry) {
	buf := make([]*channel.Channel, reg.Stats().Total)
	n := reg.List(buf)
	for _, ch := range buf[:n] {
		if ch.Kind != channel.KindDigitalInput || !ch.Enabled() {
			continue
		}
		reg.UpdateValue(ch.ID, r.Sample(ch.HWDevice, ch.HWIndex))
	}
}

func (r *GPIOReader) lineFor(hwDevice, hwIndex uint8) (*gpiocdev.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := lineKey{device: hwDevice, index: hwIndex}
	if l, ok := r.lines[key]; ok {
		return l, nil
	}

	chip := r.chipName(hwDevice)
	if chip == "" {
		return nil, fmt.Errorf("hwio: hw_device %d has no configured chip", hwDevice)
	}

	l, err := gpiocdev.RequestLine(chip, int(hwIndex), gpiocdev.AsInput)
	if err != nil {
		return nil, fmt.Errorf("hwio: request %s line %d: %w", chip, hwIndex, err)
	}

	r.lines[key] = l
	return l, nil
}

func (r *GPIOReader) chipName(hwDevice uint8) string {
	if int(hwDevice) >= len(r.chips) {
		return ""
	}
	return r.chips[hwDevice]
}

func (r *GPIOReader) fail(err error) {
	if r.onFail != nil {
		r.onFail(err)
	}
}

// Close releases every line the reader has opened.
func (r *GPIOReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for key, l := range r.lines {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
		delete(r.lines, key)
	}
	return first
}
