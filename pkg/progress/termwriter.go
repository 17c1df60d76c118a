package progress

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
)

// termWriter owns the terminal while events are read: finished lines
// scroll above a footer that is redrawn in place.
type termWriter struct {
	out         io.Writer
	width       int
	height      int
	footerLines int
}

func newTermWriter(out io.Writer, width, height int) *termWriter {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return &termWriter{out: out, width: width, height: height}
}

// PrintLine writes a line above the footer.
func (w *termWriter) PrintLine(s string) {
	fmt.Fprintln(w.out, runewidth.Truncate(s, w.width, "..."))
}

// EraseFooter removes the current footer. No-op without one.
func (w *termWriter) EraseFooter() {
	if w.footerLines == 0 {
		return
	}
	for range w.footerLines {
		fmt.Fprint(w.out, "\033[1A\r\033[2K")
	}
	w.footerLines = 0
}

// DrawFooter replaces the footer with lines, capped to a third of the
// terminal height (at least three lines).
func (w *termWriter) DrawFooter(lines []string) {
	w.EraseFooter()

	limit := max(w.height/3, 3)
	if len(lines) > limit {
		more := len(lines) - (limit - 1)
		lines = append(lines[:limit-1:limit-1], fmt.Sprintf("  ... and %d more", more))
	}
	for _, line := range lines {
		fmt.Fprintln(w.out, runewidth.Truncate(line, w.width, "..."))
	}
	w.footerLines = len(lines)
}
