package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"

	"github.com/fenwick-systems/pcmcore/proto"
)

var le = binary.LittleEndian

// client sends framed requests to rw and waits for the matching framed
// response, one PushByte at a time — mirroring pcmsim's own reader loop,
// since both sides speak the same byte-at-a-time framing.
type client struct {
	rw       io.ReadWriter
	timeout  time.Duration
	parser   *proto.Parser
	tsFormat string
	logger   *log.Logger
}

func newClient(rw io.ReadWriter, timeout time.Duration, tsFormat string, logger *log.Logger) *client {
	return &client{rw: rw, timeout: timeout, parser: proto.NewParser(), tsFormat: tsFormat, logger: logger}
}

// send writes a request frame and blocks for a response frame or timeout.
func (c *client) send(cmd uint8, payload []byte) (proto.Frame, error) {
	frame, err := proto.BuildFrame(cmd, payload)
	if err != nil {
		return proto.Frame{}, err
	}
	if _, err := c.rw.Write(frame); err != nil {
		return proto.Frame{}, fmt.Errorf("write: %w", err)
	}

	deadline := time.Now().Add(c.timeout)
	buf := make([]byte, 1)
	for time.Now().Before(deadline) {
		n, err := c.rw.Read(buf)
		if err != nil {
			return proto.Frame{}, fmt.Errorf("read: %w", err)
		}
		if n == 0 {
			continue
		}
		if f, ok := c.parser.PushByte(buf[0]); ok {
			return f, nil
		}
	}
	return proto.Frame{}, fmt.Errorf("timed out waiting for response to cmd 0x%02x", cmd)
}

func (c *client) stamp() string {
	s, err := strftime.Format(c.tsFormat, time.Now())
	if err != nil {
		return time.Now().Format(time.RFC3339)
	}
	return s
}

func (c *client) run(cmd string, args []string) error {
	switch cmd {
	case "ping":
		f, err := c.send(proto.CmdPing, nil)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n", c.stamp(), describeFrame(f))
		return nil

	case "capabilities":
		f, err := c.send(proto.CmdGetCapabilities, nil)
		if err != nil {
			return err
		}
		caps, ok := proto.DecodeCapabilities(f.Payload)
		if !ok {
			return fmt.Errorf("malformed capabilities payload, %d bytes", len(f.Payload))
		}
		fmt.Printf("[%s] firmware %d.%d.%d, max_channels=%d, flash_free=%d\n",
			c.stamp(), caps.FirmwareMajor, caps.FirmwareMinor, caps.FirmwarePatch, caps.MaxChannels, caps.FlashFreeBytes)
		return nil

	case "read-config":
		f, err := c.send(proto.CmdReadCurrentConfig, nil)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] received %d byte configuration blob\n", c.stamp(), len(f.Payload))
		return nil

	case "save-config":
		f, err := c.send(proto.CmdSaveCurrentConfig, nil)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n", c.stamp(), describeFrame(f))
		return nil

	case "serial":
		f, err := c.send(proto.CmdGetSerial, nil)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] serial %s\n", c.stamp(), string(f.Payload))
		return nil

	case "subscribe":
		if len(args) != 2 {
			return fmt.Errorf("usage: subscribe FLAGS RATE_HINT_MS")
		}
		flags, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return fmt.Errorf("bad flags: %w", err)
		}
		rate, err := strconv.ParseUint(args[1], 10, 16)
		if err != nil {
			return fmt.Errorf("bad rate hint: %w", err)
		}
		payload := make([]byte, 4)
		le.PutUint16(payload[0:2], uint16(flags))
		le.PutUint16(payload[2:4], uint16(rate))
		f, err := c.send(proto.CmdTelemetrySubscribe, payload)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n", c.stamp(), describeFrame(f))
		return nil

	case "unsubscribe":
		f, err := c.send(proto.CmdTelemetryUnsubscribe, nil)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n", c.stamp(), describeFrame(f))
		return nil

	case "set-output":
		return c.sendSetValue(proto.CmdSetOutput, args)

	case "set-pwm":
		return c.sendSetValue(proto.CmdSetPWM, args)

	case "set-hbridge":
		return c.sendSetValue(proto.CmdSetHBridge, args)

	case "get-value":
		if len(args) != 1 {
			return fmt.Errorf("usage: get-value ID")
		}
		id, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return fmt.Errorf("bad channel id: %w", err)
		}
		payload := make([]byte, 2)
		le.PutUint16(payload, uint16(id))
		f, err := c.send(proto.CmdGetChannelValue, payload)
		if err != nil {
			return err
		}
		if len(f.Payload) < 6 {
			return fmt.Errorf("malformed get-value reply, %d bytes", len(f.Payload))
		}
		v := int32(le.Uint32(f.Payload[2:6]))
		fmt.Printf("[%s] channel %d = %d\n", c.stamp(), id, v)
		return nil

	case "force":
		if len(args) != 2 {
			return fmt.Errorf("usage: force ID VALUE")
		}
		id, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return fmt.Errorf("bad channel id: %w", err)
		}
		v, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("bad value: %w", err)
		}
		payload := make([]byte, 6)
		le.PutUint16(payload[0:2], uint16(id))
		le.PutUint32(payload[2:6], uint32(int32(v)))
		f, err := c.send(proto.CmdSetChannelForce, payload)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n", c.stamp(), describeFrame(f))
		return nil

	case "console":
		return c.console()

	default:
		return fmt.Errorf("unknown subcommand %q", cmd)
	}
}

// sendSetValue parses "ID VALUE" and sends it as the body of a
// set-output/set-pwm/set-hbridge request, all of which share the same
// 2-byte-id + 4-byte-value wire shape as "force".
func (c *client) sendSetValue(cmd uint8, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: ID VALUE")
	}
	id, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return fmt.Errorf("bad channel id: %w", err)
	}
	v, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("bad value: %w", err)
	}
	payload := make([]byte, 6)
	le.PutUint16(payload[0:2], uint16(id))
	le.PutUint32(payload[2:6], uint32(int32(v)))
	f, err := c.send(cmd, payload)
	if err != nil {
		return err
	}
	fmt.Printf("[%s] %s\n", c.stamp(), describeFrame(f))
	return nil
}

// console pings the device once a second until interrupted, printing a
// timestamped line per reply — a minimal interactive loop standing in for
// the teacher's kissutil monitor mode.
func (c *client) console() error {
	fmt.Printf("entering console mode, ctrl-c to exit\n")
	for {
		f, err := c.send(proto.CmdPing, nil)
		if err != nil {
			c.logger.Warn("ping failed", "err", err)
		} else {
			fmt.Printf("[%s] %s\n", c.stamp(), describeFrame(f))
		}
		time.Sleep(time.Second)
	}
}

func describeFrame(f proto.Frame) string {
	switch f.Cmd {
	case proto.CmdPong:
		return "PONG"
	case proto.CmdAck:
		return "ACK"
	case proto.CmdNack:
		reason := f.Payload
		if len(reason) > 0 {
			reason = reason[1:] // first byte is the original command id
		}
		return fmt.Sprintf("NACK: %s", string(reason))
	case proto.CmdErrorFrame:
		return fmt.Sprintf("ERROR frame, code=%d", firstByte(f.Payload))
	default:
		return fmt.Sprintf("cmd 0x%02x, %d byte payload", f.Cmd, len(f.Payload))
	}
}

func firstByte(b []byte) uint8 {
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
