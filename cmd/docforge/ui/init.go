// Package ui provides terminal output for the docforge CLI.
package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
)

// UI writes human-readable output. Results go to Out, progress and errors
// to Err.
type UI struct {
	Out     io.Writer
	Err     io.Writer
	noColor bool
	verbose bool
	tty     bool
}

// New creates a UI on stdout/stderr.
func New(noColor, verbose bool) *UI {
	if noColor {
		color.NoColor = true
	}
	return &UI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		noColor: noColor || color.NoColor,
		verbose: verbose,
		tty:     IsTerminal(os.Stderr),
	}
}

// NewWriter creates a colourless, non-interactive UI writing to w, for tests
// and piped output.
func NewWriter(w io.Writer) *UI {
	return &UI{Out: w, Err: w, noColor: true}
}

// Verbose reports whether verbose output was requested.
func (u *UI) Verbose() bool {
	return u.verbose
}

// IsTerminal checks if f is a terminal.
func IsTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
