// Package debugblock groups diagnostic "DEBUG:" lines in test output into
// blocks so renderers can show or hide them as a unit.
//
// A block starts at a marker line and absorbs the continuation lines that
// follow it: indented lines, lines carrying braces or "---" separators, and
// blank lines. It ends at the next marker, which starts a new block, or at
// the first line that is not a continuation. Blocks never nest.
package debugblock

import (
	"regexp"
	"strings"
)

// Markers recognised at the start of a debug block, checked in order.
// The first one contained in a line wins.
var Markers = []string{"🔍 DEBUG:", "DEBUG:"}

// Segment is a run of consecutive lines of one kind.
type Segment struct {
	Debug  bool
	Marker string // marker that opened a debug segment
	Lines  []string
}

var breakRe = regexp.MustCompile(`\n|<br>`)

// SplitLines splits text on newlines or <br> markup.
func SplitLines(text string) []string {
	return breakRe.Split(text, -1)
}

// MarkerOf returns the marker contained in line, or "".
func MarkerOf(line string) string {
	for _, m := range Markers {
		if strings.Contains(line, m) {
			return m
		}
	}
	return ""
}

// IsContinuation reports whether line extends an open debug block.
func IsContinuation(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
		return true
	}
	return strings.Contains(line, "---") ||
		strings.Contains(line, "{") ||
		strings.Contains(line, "}")
}

type state int

const (
	normal state = iota
	inBlock
)

// Classify groups lines into plain and debug segments. Concatenating the
// Lines of every segment yields the input.
func Classify(lines []string) []Segment {
	var (
		segs []Segment
		cur  *Segment
		st   = normal
	)
	open := func(debug bool, marker string) {
		segs = append(segs, Segment{Debug: debug, Marker: marker})
		cur = &segs[len(segs)-1]
	}

	for _, line := range lines {
		marker := MarkerOf(line)
		switch {
		case marker != "":
			open(true, marker)
			st = inBlock
		case st == inBlock && IsContinuation(line):
			// stays in the block
		case st == inBlock || cur == nil:
			open(false, "")
			st = normal
		}
		cur.Lines = append(cur.Lines, line)
	}
	return segs
}

// Parse splits text into lines and classifies them.
func Parse(text string) []Segment {
	return Classify(SplitLines(text))
}

// HasDebug reports whether any segment is a debug block.
func HasDebug(segs []Segment) bool {
	for _, s := range segs {
		if s.Debug {
			return true
		}
	}
	return false
}

// Visible returns the lines a viewer should display. Debug blocks are
// dropped unless showDebug is set.
func Visible(segs []Segment, showDebug bool) []string {
	var out []string
	for _, s := range segs {
		if s.Debug && !showDebug {
			continue
		}
		out = append(out, s.Lines...)
	}
	return out
}
