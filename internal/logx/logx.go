// Package logx is a small wrapper around the standard library's
// log.Logger for the CLI's -v verbosity flag (SPEC_FULL.md §7.1),
// grounded on the teacher CLI's structured run-summary printing.
// Bytes and Rows render counts with github.com/dustin/go-humanize, as
// "12 kB" / "1,024" instead of raw integers.
package logx

import (
	"io"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/kr/pretty"
)

// Logger wraps a stdlib *log.Logger, gated by a verbosity flag so
// Debugf is a no-op unless -v was passed.
type Logger struct {
	*log.Logger
	verbose bool
}

// New builds a Logger writing to w with the given verbosity.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{Logger: log.New(w, "", log.LstdFlags), verbose: verbose}
}

// Default builds a Logger writing to stderr.
func Default(verbose bool) *Logger {
	return New(os.Stderr, verbose)
}

// Debugf logs only when verbose was enabled, matching -v's "print
// phase tables and task signatures" contract (SPEC_FULL.md §2 CLI).
func (l *Logger) Debugf(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.Printf(format, args...)
}

// Debugv logs a pretty-printed struct dump (a Germ or phase.Result,
// say) when verbose, instead of Go's default %+v formatting.
func (l *Logger) Debugv(label string, v interface{}) {
	if !l.verbose {
		return
	}
	l.Printf("%s: %# v", label, pretty.Formatter(v))
}

// Bytes renders a byte count the way -v debug lines report a
// relation's or DLD descriptor's physical size.
func Bytes(n uint64) string { return humanize.Bytes(n) }

// Rows renders a row count with thousands separators.
func Rows(n uint64) string { return humanize.Comma(int64(n)) }
