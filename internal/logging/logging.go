// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a logger at the named level. An unknown level falls back to
// info. console selects the human-readable writer over JSON lines.
func New(level string, console bool, service string) zerolog.Logger {
	return newLogger(os.Stderr, level, console, service)
}

func newLogger(out io.Writer, level string, console bool, service string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if console {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).
		With().Timestamp().Str("service", service).Logger().
		Level(lvl)
}
