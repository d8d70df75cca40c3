package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text, color string
}{
	{"        _                          ", "#34d399"},
	{"   __ _| |__   __ _  ___ _   _ ___ ", "#2dd4bf"},
	{"  / _` | '_ \\ / _` |/ __| | | / __|", "#22d3ee"},
	{" | (_| | |_) | (_| | (__| |_| \\__ \\", "#38bdf8"},
	{"  \\__,_|_.__/ \\__,_|\\___|\\__,_|___/", "#60a5fa"},
}

// PrintBanner writes the abacus ASCII art banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version+"  type :help for commands").Faint())
	fmt.Fprintln(w)
}

// NewHighlighter returns a result decorator coloring successes green and failures red.
func NewHighlighter(w io.Writer) func(line string, failed bool) string {
	out := termenv.NewOutput(w)
	return func(line string, failed bool) string {
		if failed {
			return out.String(line).Foreground(out.Color("#f87171")).String()
		}
		return out.String(line).Foreground(out.Color("#34d399")).Bold().String()
	}
}
