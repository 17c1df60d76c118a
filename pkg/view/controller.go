package view

import "github.com/dkoosis/gotestreport/pkg/report"

// Frame is a complete snapshot of what a renderer should show. It does not
// change when the controller handles later events.
type Frame struct {
	Filter  FilterState   `json:"filter"`
	Summary FilterSummary `json:"summary"`

	VisiblePackages IDSet `json:"-"`
	VisibleTests    IDSet `json:"-"`
	HiddenSubtests  IDSet `json:"-"`

	OpenPackages IDSet `json:"-"`
	OpenTests    IDSet `json:"-"`
	OpenOutputs  IDSet `json:"-"`
	OpenSubtests IDSet `json:"-"`

	VisibleCount int  `json:"visible_count"`
	NoResults    bool `json:"no_results"`
}

// PackageVisible reports whether a package is shown.
func (f Frame) PackageVisible(id string) bool { return f.VisiblePackages.Has(id) }

// TestVisible reports whether a top-level test is shown.
func (f Frame) TestVisible(id string) bool { return f.VisibleTests.Has(id) }

// SubtestVisible reports whether a subtest is shown within its parent.
func (f Frame) SubtestVisible(id string) bool { return !f.HiddenSubtests.Has(id) }

// PackageOpen reports whether a package is expanded.
func (f Frame) PackageOpen(id string) bool { return f.OpenPackages.Has(id) }

// TestOpen reports whether a test row is expanded.
func (f Frame) TestOpen(id string) bool { return f.OpenTests.Has(id) }

// OutputOpen reports whether a test's output panel is open.
func (f Frame) OutputOpen(id string) bool { return f.OpenOutputs.Has(id) }

// SubtestsOpen reports whether a test's subtest container is open.
func (f Frame) SubtestsOpen(id string) bool { return f.OpenSubtests.Has(id) }

// StatusActive reports whether s is the selected status card.
func (f Frame) StatusActive(s StatusFilter) bool { return f.Filter.Status == s }

// Controller owns the filter state and the expansion state of one report
// and turns user events into frames. It is not safe for concurrent use.
type Controller struct {
	report   *report.Report
	filter   FilterState
	exp      *Expansion
	decision Decision
}

// New returns a controller for r. Failing packages and tests are opened
// before the first filter is applied.
func New(r *report.Report) *Controller {
	c := &Controller{
		report: r,
		filter: NewFilterState(),
		exp:    NewExpansion(r),
	}
	c.exp.OpenFailures()
	c.apply()
	return c
}

// Report returns the report being viewed.
func (c *Controller) Report() *report.Report { return c.report }

// Filter returns the current filter state.
func (c *Controller) Filter() FilterState { return c.filter }

// SetFilter replaces the filter state. The search term is normalised.
func (c *Controller) SetFilter(f FilterState) Frame {
	c.filter = FilterState{Status: f.Status, Search: NormalizeSearch(f.Search)}
	if c.filter.Status == "" {
		c.filter.Status = All
	}
	c.apply()
	return c.Frame()
}

// SetSearch handles an edit of the search field.
func (c *Controller) SetSearch(raw string) Frame {
	c.filter.SetSearch(raw)
	c.apply()
	return c.Frame()
}

// SelectStatus handles a click on a status card. Clicking the active card
// again resets the filter to All.
func (c *Controller) SelectStatus(s StatusFilter) Frame {
	c.filter.ToggleStatus(s)
	c.apply()
	return c.Frame()
}

// ClearFilters resets status and search.
func (c *Controller) ClearFilters() Frame {
	c.filter.Clear()
	c.apply()
	return c.Frame()
}

// TogglePackage expands or collapses a package.
func (c *Controller) TogglePackage(id string) Frame {
	c.exp.TogglePackage(id)
	return c.Frame()
}

// ToggleTest expands or collapses a test with its output and subtests.
func (c *Controller) ToggleTest(id string) Frame {
	c.exp.ToggleTest(id)
	return c.Frame()
}

// ToggleOutput shows or hides the output of a test without subtests.
func (c *Controller) ToggleOutput(id string) Frame {
	c.exp.ToggleOutput(id)
	return c.Frame()
}

// Toggle picks the right toggle for id: packages, tests with subtests,
// and leaf tests each have their own.
func (c *Controller) Toggle(id string) Frame {
	if c.report.Package(id) != nil {
		return c.TogglePackage(id)
	}
	if t := c.report.Test(id); t != nil && !t.HasSubtests() {
		return c.ToggleOutput(id)
	}
	return c.ToggleTest(id)
}

// apply recomputes visibility and opens tests revealed by the search.
// Revealed tests stay open after the search changes, as if the user had
// opened them.
func (c *Controller) apply() {
	c.decision = Apply(c.report, c.filter)
	for id := range c.decision.AutoOpen {
		c.exp.RevealSubtests(id)
	}
}

// Frame returns a snapshot of the current state.
func (c *Controller) Frame() Frame {
	return Frame{
		Filter:          c.filter,
		Summary:         c.filter.Summary(),
		VisiblePackages: c.decision.VisiblePackages.Clone(),
		VisibleTests:    c.decision.VisibleTests.Clone(),
		HiddenSubtests:  c.decision.HiddenSubtests.Clone(),
		OpenPackages:    c.exp.packages.Clone(),
		OpenTests:       c.exp.tests.Clone(),
		OpenOutputs:     c.exp.outputs.Clone(),
		OpenSubtests:    c.exp.subtests.Clone(),
		VisibleCount:    c.decision.VisibleCount,
		NoResults:       c.decision.NoResults,
	}
}
