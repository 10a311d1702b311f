// Package logging builds the operational logger. Logs go to stderr so the
// pass/fail transcript on stdout stays clean.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Options controls logger construction.
type Options struct {
	// Verbose lowers the level from info to debug.
	Verbose bool

	// NoColor disables ANSI colours.
	NoColor bool
}

// New returns a console logger writing to w.
func New(w io.Writer, opts Options) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    opts.NoColor,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Console returns a logger on w, coloured only when w is a terminal.
func Console(w io.Writer, verbose bool) zerolog.Logger {
	return New(w, Options{
		Verbose: verbose,
		NoColor: !isTerminal(w),
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
