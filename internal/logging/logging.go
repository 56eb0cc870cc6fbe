// Package logging builds the process logger. Library packages take a
// *log.Logger explicitly and never reach for a global one.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w. Verbose enables debug output and
// timestamps.
func New(w io.Writer, verbose bool) *log.Logger {
	opts := log.Options{
		Level:  log.InfoLevel,
		Prefix: "refcheck",
	}
	if verbose {
		opts.Level = log.DebugLevel
		opts.ReportTimestamp = true
		opts.TimeFormat = time.RFC3339
	}
	return log.NewWithOptions(w, opts)
}

// Stderr returns a logger for command-line use.
func Stderr(verbose bool) *log.Logger {
	return New(os.Stderr, verbose)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
