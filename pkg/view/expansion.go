package view

import "github.com/dkoosis/gotestreport/pkg/report"

// Indicator glyphs for collapsed and expanded sections.
const (
	IndicatorClosed = "▸"
	IndicatorOpen   = "▾"
)

// Indicator returns the glyph for a section's open state.
func Indicator(open bool) string {
	if open {
		return IndicatorOpen
	}
	return IndicatorClosed
}

// Expansion tracks which packages and test panels are open. It is
// independent of filtering. Unknown IDs are ignored.
type Expansion struct {
	report   *report.Report
	packages IDSet
	tests    IDSet
	outputs  IDSet
	subtests IDSet
}

// NewExpansion returns an expansion state with everything closed.
func NewExpansion(r *report.Report) *Expansion {
	return &Expansion{
		report:   r,
		packages: make(IDSet),
		tests:    make(IDSet),
		outputs:  make(IDSet),
		subtests: make(IDSet),
	}
}

func flip(s IDSet, id string) {
	if s.Has(id) {
		s.Remove(id)
		return
	}
	s.Add(id)
}

// TogglePackage flips a package open or closed. Header and content share
// the one flag.
func (e *Expansion) TogglePackage(id string) {
	if e.report.Package(id) == nil {
		return
	}
	flip(e.packages, id)
}

// ToggleTest flips a test's open flag, its output panel, and its subtest
// container when it has one. Each flag flips on its own.
func (e *Expansion) ToggleTest(id string) {
	t := e.report.Test(id)
	if t == nil {
		return
	}
	flip(e.tests, id)
	flip(e.outputs, id)
	if t.HasSubtests() {
		flip(e.subtests, id)
	}
}

// ToggleOutput flips only the output panel of a test without subtests.
func (e *Expansion) ToggleOutput(id string) {
	t := e.report.Test(id)
	if t == nil || t.HasSubtests() {
		return
	}
	flip(e.outputs, id)
}

// OpenPackage opens a package.
func (e *Expansion) OpenPackage(id string) {
	if e.report.Package(id) != nil {
		e.packages.Add(id)
	}
}

// RevealSubtests opens a test and its subtest container, leaving the
// output panel as it is.
func (e *Expansion) RevealSubtests(id string) {
	t := e.report.Test(id)
	if t == nil {
		return
	}
	e.tests.Add(id)
	if t.HasSubtests() {
		e.subtests.Add(id)
	}
}

// OpenFailures opens every package containing a failed test and, inside
// it, every failed top-level test with its output and subtest container.
func (e *Expansion) OpenFailures() {
	for _, pkg := range e.report.Packages {
		if !pkg.HasFailures() {
			continue
		}
		e.packages.Add(pkg.ID)
		for _, t := range pkg.Tests {
			if t.Status != report.Failed {
				continue
			}
			e.tests.Add(t.ID)
			e.outputs.Add(t.ID)
			if t.HasSubtests() {
				e.subtests.Add(t.ID)
			}
		}
	}
}

// PackageOpen reports whether a package is open.
func (e *Expansion) PackageOpen(id string) bool { return e.packages.Has(id) }

// TestOpen reports whether a test row is open.
func (e *Expansion) TestOpen(id string) bool { return e.tests.Has(id) }

// OutputOpen reports whether a test's output panel is open.
func (e *Expansion) OutputOpen(id string) bool { return e.outputs.Has(id) }

// SubtestsOpen reports whether a test's subtest container is open.
func (e *Expansion) SubtestsOpen(id string) bool { return e.subtests.Has(id) }
