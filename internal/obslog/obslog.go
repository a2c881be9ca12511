// Package obslog is the structured logging entry point shared by the
// pcmsim and pcmhost binaries. It wraps charmbracelet/log so every
// component logs through one configured writer instead of reaching for the
// standard library logger directly.
package obslog

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w (typically os.Stderr) at level, with
// the package/command name attached as a persistent field so interleaved
// output from the executor, dispatcher, and hardware layer stays
// attributable.
func New(w io.Writer, name string, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           level,
	})
	return l.With("component", name)
}

// Default builds a logger writing to stderr at info level, for callers
// that don't need a custom level (e.g. one-shot CLI subcommands).
func Default(name string) *log.Logger {
	return New(os.Stderr, name, log.InfoLevel)
}

// ForPass returns a child logger tagged with the executor's running pass
// counter, so a burst of per-channel warnings within one pass can be
// correlated back to it.
func ForPass(l *log.Logger, pass uint64) *log.Logger {
	return l.With("pass", pass)
}

// ForCommand returns a child logger tagged with an inbound protocol
// command id, for dispatcher-side request/response logging.
func ForCommand(l *log.Logger, cmd uint8) *log.Logger {
	return l.With("cmd", cmd)
}

// ParseLevel maps a CLI --log-level flag value to a log.Level, defaulting
// to info on an unrecognized string rather than failing startup.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
