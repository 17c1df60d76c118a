package view

import "github.com/dkoosis/gotestreport/pkg/report"

// IDSet is a set of package or test IDs.
type IDSet map[string]struct{}

// Has reports membership. A nil set is empty.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Remove deletes id.
func (s IDSet) Remove(id string) { delete(s, id) }

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Decision is the outcome of filtering a report.
type Decision struct {
	// VisibleTests holds visible top-level tests.
	VisibleTests IDSet
	// VisiblePackages holds packages with at least one visible top-level test.
	VisiblePackages IDSet
	// HiddenSubtests holds subtests hidden by the search term. Subtests of
	// a visible test that are not listed are shown.
	HiddenSubtests IDSet
	// AutoOpen holds tests to expand, together with their subtest
	// container, because a descendant matched the search.
	AutoOpen     IDSet
	VisibleCount int
	NoResults    bool
}

// Apply filters r. A top-level test is visible when its status matches and
// the search term is empty or contained in its name or in the name of any
// descendant subtest. The status filter is only checked on top-level tests.
// A package is visible when one of its direct tests is visible.
func Apply(r *report.Report, f FilterState) Decision {
	d := Decision{
		VisibleTests:    make(IDSet),
		VisiblePackages: make(IDSet),
		HiddenSubtests:  make(IDSet),
		AutoOpen:        make(IDSet),
	}

	for _, pkg := range r.Packages {
		for _, t := range pkg.Tests {
			if !f.MatchesStatus(t.Status) {
				continue
			}
			direct := f.MatchesName(t.Name)
			viaSubtest := !direct && markSubtests(t, f, &d)
			if !direct && !viaSubtest {
				continue
			}

			d.VisibleTests.Add(t.ID)
			d.VisiblePackages.Add(pkg.ID)
			d.VisibleCount++
		}
	}
	d.NoResults = d.VisibleCount == 0
	return d
}

// markSubtests records which descendants of t stay visible under the
// search term and which tests must be expanded to reveal them. It reports
// whether any descendant matched. Nothing is recorded when none did.
func markSubtests(t *report.Test, f FilterState, d *Decision) bool {
	if f.Search == "" || !t.HasSubtests() {
		return false
	}
	if !openMatches(t, f, d.AutoOpen) {
		return false
	}
	// Every subtest is shown or hidden by its own name.
	t.WalkSubtests(func(sub *report.Test) {
		if !f.MatchesName(sub.Name) {
			d.HiddenSubtests.Add(sub.ID)
		}
	})
	return true
}

// openMatches opens t and every subtest of t that contains a matching
// descendant. It reports whether any descendant matched.
func openMatches(t *report.Test, f FilterState, open IDSet) bool {
	matched := false
	for _, sub := range t.Subtests {
		if openMatches(sub, f, open) || f.MatchesName(sub.Name) {
			matched = true
		}
	}
	if matched {
		open.Add(t.ID)
	}
	return matched
}
