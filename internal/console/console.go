// Package console writes human-facing progress and warning lines. Warnings
// are yellow and successes green when the destination is a terminal.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Logger prints to an output and an error stream.
type Logger struct {
	out  io.Writer
	err  io.Writer
	warn *color.Color
	ok   *color.Color

	warnings int
}

// New returns a Logger writing info lines to out and warnings to errw.
// Color is enabled only when errw is a terminal and NO_COLOR is unset.
func New(out, errw io.Writer) *Logger {
	l := &Logger{
		out:  out,
		err:  errw,
		warn: color.New(color.FgYellow),
		ok:   color.New(color.FgGreen),
	}
	if !IsTerminal(errw) || os.Getenv("NO_COLOR") != "" {
		l.warn.DisableColor()
		l.ok.DisableColor()
	} else {
		l.warn.EnableColor()
		l.ok.EnableColor()
	}
	return l
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Infof prints a plain line.
func (l *Logger) Infof(format string, args ...any) {
	fmt.Fprintf(l.out, format+"\n", args...)
}

// Successf prints a line prefixed with a check mark.
func (l *Logger) Successf(format string, args ...any) {
	l.ok.Fprintf(l.out, "✓ "+format+"\n", args...)
}

// Warnf prints a warning line. It never fails.
func (l *Logger) Warnf(format string, args ...any) {
	l.warnings++
	l.warn.Fprintf(l.err, "warning: "+format+"\n", args...)
}

// Warnings returns how many warnings were printed.
func (l *Logger) Warnings() int {
	return l.warnings
}
