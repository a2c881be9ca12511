// Command pcmsim is the device-side simulator: it runs the channel
// registry, executor, and protocol dispatcher that a real ECU firmware
// would run, and exposes the framed protocol over a pseudo-terminal the
// way the teacher's virtual KISS TNC exposes itself for a client to open,
// instead of a real UART.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"github.com/spf13/pflag"

	"github.com/fenwick-systems/pcmcore/channel"
	"github.com/fenwick-systems/pcmcore/config"
	"github.com/fenwick-systems/pcmcore/exec"
	"github.com/fenwick-systems/pcmcore/hwio"
	"github.com/fenwick-systems/pcmcore/internal/obslog"
	"github.com/fenwick-systems/pcmcore/proto"
	"github.com/fenwick-systems/pcmcore/telemetry"
)

func main() {
	var (
		tickHz      = pflag.IntP("tick-hz", "t", 50, "Executor pass rate, Hz")
		telemetryHz = pflag.IntP("telemetry-hz", "T", 10, "Telemetry broadcast rate, Hz (0 disables)")
		flashPath   = pflag.StringP("flash", "f", "", "Path to a file backing saved configuration (empty: in-memory only)")
		gpioChips   = pflag.StringArray("gpio-chip", nil, "gpiod chip name to bind outputs to, repeatable; index position is hw_device")
		logLevel    = pflag.StringP("log-level", "l", "info", "Log level: debug, info, warn, error")
		help        = pflag.Bool("help", false, "Display help text")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pcmsim [options]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a simulated ECU, exposing the framed protocol on a pseudo-terminal.\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	logger := obslog.New(os.Stderr, "pcmsim", obslog.ParseLevel(*logLevel))

	reg := channel.NewRegistry(256)
	lim := config.DefaultLimits()

	var flash config.FlashStore
	if *flashPath != "" {
		flash = newFileStore(*flashPath, logger)
	} else {
		flash = &config.MemStore{}
	}

	var writer exec.HardwareWriter = exec.NopWriter{}
	if len(*gpioChips) > 0 {
		gw := hwio.NewGPIOWriter(*gpioChips, func(err error) {
			logger.Error("gpio write failed", "err", err)
		})
		defer gw.Close()
		writer = gw
	}

	e := exec.NewExecutor(reg, writer)
	dispatcher := proto.NewDispatcher(reg, e, flash, lim)
	dispatcher.Capabilities = proto.Capabilities{
		HardwareFlags:   proto.HWFlagGPIO,
		SoftwareFlags:   proto.SWFlagTelemetry | proto.SWFlagFlashPersist | proto.SWFlagChunkedUpload,
		MaxChannels:     uint16(lim.MaxChannels),
		FlashSectorSize: 4096,
		FlashFreeBytes:  256 * 1024,
		FirmwareMajor:   1,
	}

	ptmx, pts, err := pty.Open()
	if err != nil {
		logger.Fatal("could not open pseudo terminal", "err", err)
	}
	defer ptmx.Close()
	defer pts.Close()

	logger.Info("simulated ECU serial link available", "path", pts.Name())

	go runProtocolLoop(ptmx, dispatcher, logger)

	runExecutorLoop(reg, e, dispatcher, ptmx, *tickHz, *telemetryHz, logger)
}

// runProtocolLoop reads framed requests from rw and writes framed responses
// back to it, one PushByte at a time, matching the byte-at-a-time parsing
// discipline of proto.Parser.
func runProtocolLoop(rw io.ReadWriter, d *proto.Dispatcher, logger *log.Logger) {
	buf := make([]byte, 1)
	for {
		n, err := rw.Read(buf)
		if err != nil {
			if err != io.EOF {
				logger.Warn("serial read error", "err", err)
			}
			return
		}
		if n == 0 {
			continue
		}
		f, ok := d.Parser.PushByte(buf[0])
		if !ok {
			continue
		}
		resp, err := d.Handle(f)
		if err != nil {
			logger.Error("dispatch failed", "cmd", f.Cmd, "err", err)
			continue
		}
		if _, err := rw.Write(resp); err != nil {
			logger.Warn("serial write error", "err", err)
			return
		}
	}
}

// runExecutorLoop drives the executor at tickHz and, if telemetryHz is
// nonzero, periodically writes an unsolicited telemetry frame to w — but
// only while a client holds an active CmdTelemetrySubscribe subscription on
// d (§4.7); an unsubscribed client, or one that never subscribed, gets no
// telemetry traffic at all.
func runExecutorLoop(reg *channel.Registry, e *exec.Executor, d *proto.Dispatcher, w io.Writer, tickHz, telemetryHz int, logger *log.Logger) {
	if tickHz <= 0 {
		tickHz = 1
	}
	tick := time.NewTicker(time.Second / time.Duration(tickHz))
	defer tick.Stop()

	var telemetryTick <-chan time.Time
	if telemetryHz > 0 {
		t := time.NewTicker(time.Second / time.Duration(telemetryHz))
		defer t.Stop()
		telemetryTick = t.C
	}

	start := time.Now()
	var pass uint64
	for {
		select {
		case <-tick.C:
			e.Pass(uint32(time.Since(start).Milliseconds()))
			pass++
		case <-telemetryTick:
			if !d.TelemetrySubscribed {
				continue
			}
			writeTelemetry(reg, d.TelemetryFlags, w, uint32(pass), uint32(time.Since(start).Milliseconds()), logger)
		}
	}
}

// writeTelemetry builds and sends one telemetry frame, restricted to the
// sections the subscriber asked for in its subscribe flag bitmap.
func writeTelemetry(reg *channel.Registry, flags uint16, w io.Writer, counter, nowMs uint32, logger *log.Logger) {
	buf := make([]*channel.Channel, reg.Stats().Total)
	n := reg.List(buf)

	pkt := telemetry.Packet{
		Header: telemetry.Header{
			StreamCounter: counter,
			TimestampMs:   nowMs,
			Flags:         flags,
		},
	}
	for _, ch := range buf[:n] {
		if flags&telemetry.FlagDIN != 0 && ch.Kind == channel.KindDigitalInput && ch.Enabled() && ch.Value != 0 {
			pkt.DigitalInput |= 1 << uint(ch.ID-channel.IDInputMin)
		}
		if flags&telemetry.FlagVirtuals != 0 && ch.Kind.IsComputed() {
			pkt.Virtuals = append(pkt.Virtuals, telemetry.VirtualReading{ChannelID: uint16(ch.ID), Value: ch.Value})
		}
		if flags&telemetry.FlagFaults != 0 && ch.Flags.Has(channel.FlagInFault) {
			pkt.FaultFlags = 1
		}
	}

	wire := telemetry.Build(pkt)
	frame, err := proto.BuildFrame(proto.CmdTelemetryData, wire)
	if err != nil {
		logger.Error("telemetry frame build failed", "err", err)
		return
	}
	if _, err := w.Write(frame); err != nil {
		logger.Warn("telemetry write failed", "err", err)
	}
}
