// Command pcmhost is the host-side tool for talking to a device running
// pcmsim (or real firmware) over the framed protocol (§4.7), the way the
// teacher's kissutil talks to a running TNC over a serial port or TCP
// socket.
//
// Usage: pcmhost  [ options ]  <subcommand>
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/term"
	"github.com/spf13/pflag"

	"github.com/fenwick-systems/pcmcore/internal/obslog"
)

func main() {
	var (
		devicePath = pflag.StringP("device", "d", "", "Serial device path of the target (e.g. the pts path pcmsim printed)")
		baud       = pflag.IntP("baud", "b", 115200, "Serial port speed")
		timeoutMs  = pflag.IntP("timeout", "T", 2000, "Reply timeout, milliseconds")
		timeFormat = pflag.StringP("timestamp-format", "t", "%H:%M:%S", "strftime format for response timestamps")
		logLevel   = pflag.StringP("log-level", "l", "info", "Log level: debug, info, warn, error")
		help       = pflag.Bool("help", false, "Display help text")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pcmhost [options] <ping|capabilities|serial|read-config|save-config|get-value ID|force ID VALUE|set-output ID VALUE|set-pwm ID VALUE|set-hbridge ID VALUE|subscribe FLAGS RATE_HINT_MS|unsubscribe|console>\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	logger := obslog.New(os.Stderr, "pcmhost", obslog.ParseLevel(*logLevel))

	if *help || *devicePath == "" || pflag.NArg() == 0 {
		pflag.Usage()
		if *devicePath == "" && !*help {
			os.Exit(2)
		}
		return
	}

	fd, err := term.Open(*devicePath, term.Speed(*baud), term.RawMode)
	if err != nil {
		logger.Fatal("could not open device", "device", *devicePath, "err", err)
	}
	defer fd.Close()

	client := newClient(fd, time.Duration(*timeoutMs)*time.Millisecond, *timeFormat, logger)

	args := pflag.Args()
	if err := client.run(args[0], args[1:]); err != nil {
		logger.Fatal("command failed", "cmd", args[0], "err", err)
	}
}
