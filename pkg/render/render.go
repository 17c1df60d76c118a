// Package render turns a report and a view frame into output: a
// self-contained HTML page, styled terminal text, or JSON.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/dkoosis/gotestreport/pkg/debugblock"
	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/view"
)

// Renderer writes a report as seen through frame f.
type Renderer interface {
	Render(w io.Writer, r *report.Report, f view.Frame) error
}

// FormatDuration formats a test duration the way go test prints it.
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// outputSegments classifies a test's output lines into plain and debug runs.
func outputSegments(t *report.Test) []debugblock.Segment {
	if len(t.Output) == 0 {
		return nil
	}
	return debugblock.Classify(t.Output)
}

// visibleSubtests returns the subtests of t that the frame shows.
func visibleSubtests(t *report.Test, f view.Frame) []*report.Test {
	var out []*report.Test
	for _, s := range t.Subtests {
		if f.SubtestVisible(s.ID) {
			out = append(out, s)
		}
	}
	return out
}
