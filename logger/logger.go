// Package logger builds the zerolog logger used across newsscrape.
package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the output format and verbosity.
type Options struct {
	Debug bool // log at debug level, including HTTP round trips
	JSON  bool // emit JSON lines instead of console output
}

// New returns a logger writing to w. Console output is the default so that
// progress and fetch errors read naturally on a terminal.
func New(w io.Writer, opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	if !opts.JSON {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
		}
	}

	lg := zerolog.New(w).Level(level).With().Timestamp()
	if opts.Debug {
		lg = lg.Caller()
	}

	return lg.Logger()
}
