package tui

import (
	"golang.org/x/term"
)

// IsTerminal reports whether v is a file descriptor attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
