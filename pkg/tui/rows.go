package tui

import (
	"github.com/dkoosis/gotestreport/pkg/debugblock"
	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/view"
)

// debugHiddenHint stands in for debug blocks while debug output is off.
const debugHiddenHint = "(debug output hidden, press d to show)"

type rowKind int

const (
	rowPackage rowKind = iota
	rowTest
	rowOutput
)

// row is one line of the test tree. Output rows carry the ID of the test
// they belong to so that toggling on them closes the test.
type row struct {
	kind   rowKind
	id     string
	depth  int
	pkg    *report.Package
	test   *report.Test
	text   string
	debug  bool
	hasKid bool
	open   bool
}

// buildRows flattens what the frame shows into rows.
func buildRows(r *report.Report, f view.Frame, showDebug bool) []row {
	var rows []row
	for _, pkg := range r.Packages {
		if !f.PackageVisible(pkg.ID) {
			continue
		}
		open := f.PackageOpen(pkg.ID)
		rows = append(rows, row{kind: rowPackage, id: pkg.ID, pkg: pkg, open: open, hasKid: true})
		if !open {
			continue
		}
		for _, t := range pkg.Tests {
			if f.TestVisible(t.ID) {
				rows = appendTest(rows, t, f, 1, showDebug)
			}
		}
	}
	return rows
}

func appendTest(rows []row, t *report.Test, f view.Frame, depth int, showDebug bool) []row {
	open := f.OutputOpen(t.ID)
	if t.HasSubtests() {
		open = f.TestOpen(t.ID)
	}
	rows = append(rows, row{
		kind:   rowTest,
		id:     t.ID,
		depth:  depth,
		test:   t,
		open:   open,
		hasKid: t.HasSubtests() || len(t.Output) > 0,
	})

	if f.OutputOpen(t.ID) && len(t.Output) > 0 {
		segs := debugblock.Classify(t.Output)
		for _, seg := range segs {
			if seg.Debug && !showDebug {
				continue
			}
			for _, line := range seg.Lines {
				rows = append(rows, row{kind: rowOutput, id: t.ID, depth: depth + 1, text: line, debug: seg.Debug})
			}
		}
		if !showDebug && debugblock.HasDebug(segs) {
			rows = append(rows, row{kind: rowOutput, id: t.ID, depth: depth + 1, text: debugHiddenHint, debug: true})
		}
	}
	if t.HasSubtests() && f.SubtestsOpen(t.ID) {
		for _, sub := range t.Subtests {
			if f.SubtestVisible(sub.ID) {
				rows = appendTest(rows, sub, f, depth+1, showDebug)
			}
		}
	}
	return rows
}
