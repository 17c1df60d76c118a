package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/view"
)

// Terminal renders a frame as styled terminal output via lipgloss. Only
// open packages list their tests; only open tests show output and
// subtests.
type Terminal struct {
	theme     Theme
	width     int
	showDebug bool
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int, showDebug bool) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width, showDebug: showDebug}
}

// Render writes the frame to w.
func (t *Terminal) Render(w io.Writer, r *report.Report, f view.Frame) error {
	var sb strings.Builder
	t.renderHeader(&sb, r, f)
	t.renderBuildFailures(&sb, r)

	if f.NoResults {
		sb.WriteString(t.theme.Muted.Render("No tests match the current filters."))
		sb.WriteString("\n")
	}
	for _, pkg := range r.Packages {
		if !f.PackageVisible(pkg.ID) {
			continue
		}
		t.renderPackage(&sb, pkg, f)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (t *Terminal) renderHeader(sb *strings.Builder, r *report.Report, f view.Frame) {
	sb.WriteString(t.theme.Bold.Render(r.Title))
	if !r.Date.IsZero() {
		sb.WriteString(t.theme.Muted.Render("  " + r.Date.Format("2006-01-02 15:04:05")))
	}
	sb.WriteString("\n")

	cards := []struct {
		filter view.StatusFilter
		label  string
		count  int
		style  lipgloss.Style
	}{
		{view.All, "Total", r.Summary.Total, t.theme.Primary},
		{view.Passed, "Passed", r.Summary.Passed, t.theme.Success},
		{view.Failed, "Failed", r.Summary.Failed, t.theme.Error},
		{view.Skipped, "Skipped", r.Summary.Skipped, t.theme.Warning},
	}
	parts := make([]string, 0, len(cards)+1)
	for _, c := range cards {
		text := fmt.Sprintf("%s %d", c.label, c.count)
		if f.StatusActive(c.filter) {
			text = "[" + text + "]"
		}
		parts = append(parts, c.style.Render(text))
	}
	parts = append(parts, t.theme.Muted.Render(FormatDuration(r.Duration)))
	sb.WriteString(strings.Join(parts, "  "))
	sb.WriteString("\n")

	if !f.Summary.Empty() {
		sb.WriteString(t.theme.Muted.Render(f.Summary.String()))
		sb.WriteString("\n")
	}
	if r.Malformed > 0 {
		sb.WriteString(t.theme.Warning.Render(fmt.Sprintf("%d malformed input lines skipped", r.Malformed)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func (t *Terminal) renderBuildFailures(sb *strings.Builder, r *report.Report) {
	failed := r.BuildFailures()
	if len(failed) == 0 {
		return
	}
	sb.WriteString(t.theme.Error.Render("Build failures"))
	sb.WriteString("\n")
	for _, pkg := range failed {
		sb.WriteString("  ")
		sb.WriteString(t.theme.Bold.Render(pkg.Name))
		sb.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(pkg.BuildError, "\n"), "\n") {
			sb.WriteString("    ")
			sb.WriteString(t.theme.Muted.Render(line))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

func (t *Terminal) renderPackage(sb *strings.Builder, pkg *report.Package, f view.Frame) {
	open := f.PackageOpen(pkg.ID)
	status := report.Passed
	if pkg.HasFailures() {
		status = report.Failed
	}
	icon, style := t.theme.StatusStyle(string(status))

	sb.WriteString(view.Indicator(open) + " ")
	sb.WriteString(style.Render(icon) + " ")
	sb.WriteString(t.theme.Bold.Render(pkg.Name))
	counts := fmt.Sprintf("  %d passed, %d failed, %d skipped  %s",
		pkg.Summary.Passed, pkg.Summary.Failed, pkg.Summary.Skipped, FormatDuration(pkg.Duration))
	if pkg.Coverage > 0 {
		counts += fmt.Sprintf("  %.1f%% coverage", pkg.Coverage)
	}
	if pkg.Panicked {
		counts += "  panicked"
	}
	sb.WriteString(t.theme.Muted.Render(counts))
	sb.WriteString("\n")
	if !open {
		return
	}
	for _, test := range pkg.Tests {
		if f.TestVisible(test.ID) {
			t.renderTest(sb, test, f, 1)
		}
	}
}

func (t *Terminal) renderTest(sb *strings.Builder, test *report.Test, f view.Frame, depth int) {
	indent := strings.Repeat("  ", depth)
	icon, style := t.theme.StatusStyle(string(test.Status))

	open := f.OutputOpen(test.ID)
	if test.HasSubtests() {
		open = f.TestOpen(test.ID)
	}
	dur := FormatDuration(test.Duration)
	nameWidth := t.width - runewidth.StringWidth(indent) - runewidth.StringWidth(dur) - 6
	name := test.DisplayName
	if nameWidth > 3 {
		name = runewidth.Truncate(name, nameWidth, "...")
	}

	sb.WriteString(indent)
	if test.HasSubtests() || len(test.Output) > 0 {
		sb.WriteString(view.Indicator(open) + " ")
	} else {
		sb.WriteString("  ")
	}
	sb.WriteString(style.Render(icon) + " ")
	sb.WriteString(name)
	sb.WriteString(t.theme.Muted.Render("  " + dur))
	sb.WriteString("\n")

	if f.OutputOpen(test.ID) {
		t.renderOutput(sb, test, indent+"    ")
	}
	if test.HasSubtests() && f.SubtestsOpen(test.ID) {
		for _, sub := range visibleSubtests(test, f) {
			t.renderTest(sb, sub, f, depth+1)
		}
	}
}

func (t *Terminal) renderOutput(sb *strings.Builder, test *report.Test, indent string) {
	for _, seg := range outputSegments(test) {
		if seg.Debug && !t.showDebug {
			continue
		}
		style := t.theme.Muted
		if seg.Debug {
			style = t.theme.Debug
		}
		for _, line := range seg.Lines {
			sb.WriteString(indent)
			sb.WriteString(style.Render(line))
			sb.WriteString("\n")
		}
	}
}
