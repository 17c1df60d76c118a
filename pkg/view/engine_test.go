package view

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/dkoosis/gotestreport/pkg/report"
)

func TestApply_StatusFilter(t *testing.T) {
	d := Apply(fixtureReport(), FilterState{Status: Failed})

	assert.True(t, d.VisibleTests.Has("B"))
	assert.False(t, d.VisibleTests.Has("A"))
	assert.True(t, d.VisiblePackages.Has("pkgA"))
	assert.False(t, d.VisiblePackages.Has("pkgB"))
	assert.Equal(t, 1, d.VisibleCount)
	assert.False(t, d.NoResults)
}

func TestApply_SearchMatchesSubtests(t *testing.T) {
	d := Apply(fixtureReport(), FilterState{Status: All, Search: "time"})

	assert.True(t, d.VisibleTests.Has("parseTime"), "direct match is case-insensitive")
	assert.True(t, d.VisibleTests.Has("other"), "visible through subtest timeout")
	assert.True(t, d.AutoOpen.Has("other"))
	assert.False(t, d.HiddenSubtests.Has("timeout"))
	assert.True(t, d.HiddenSubtests.Has("count"))
	assert.False(t, d.AutoOpen.Has("parseTime"))
	assert.True(t, d.VisiblePackages.Has("pkgB"))
	assert.False(t, d.VisiblePackages.Has("pkgA"))
}

func TestApply_StatusStillAppliesWhenSubtestMatches(t *testing.T) {
	d := Apply(fixtureReport(), FilterState{Status: Failed, Search: "timeout"})

	assert.False(t, d.VisibleTests.Has("other"))
	assert.Empty(t, d.AutoOpen)
	assert.True(t, d.NoResults)
}

func TestApply_NestedSubtestsHiddenByOwnName(t *testing.T) {
	r := report.Assemble("t", time.Time{}, &report.Package{ID: "p", Tests: []*report.Test{
		{ID: "root", Name: "TestRoot", Status: report.Passed, Subtests: []*report.Test{
			{ID: "mid", Name: "group", Status: report.Passed, Subtests: []*report.Test{
				{ID: "leaf", Name: "deadline", Status: report.Passed},
				{ID: "leaf2", Name: "other", Status: report.Passed},
			}},
			{ID: "side", Name: "unrelated", Status: report.Passed},
		}},
	}})

	d := Apply(r, FilterState{Status: All, Search: "deadline"})

	assert.True(t, d.VisibleTests.Has("root"))
	assert.True(t, d.AutoOpen.Has("root"))
	assert.True(t, d.AutoOpen.Has("mid"))
	assert.True(t, d.HiddenSubtests.Has("mid"), "group does not contain the term")
	assert.False(t, d.HiddenSubtests.Has("leaf"))
	assert.True(t, d.HiddenSubtests.Has("leaf2"))
	assert.True(t, d.HiddenSubtests.Has("side"))
}

func TestApply_NoMatches(t *testing.T) {
	d := Apply(fixtureReport(), FilterState{Status: All, Search: "zzz"})

	assert.Zero(t, d.VisibleCount)
	assert.True(t, d.NoResults)
	assert.Empty(t, d.VisiblePackages)
}

func TestApply_EmptyReport(t *testing.T) {
	d := Apply(report.Assemble("empty", time.Time{}), NewFilterState())
	assert.True(t, d.NoResults)
}

var (
	propNames    = []string{"alpha", "Beta", "parseTime", "timeout", "count", "gamma_ray"}
	propSearches = []string{"", "time", "a", " COUNT ", "zzz", "ray"}
)

func drawTest(t *rapid.T, depth int, label string) *report.Test {
	tt := &report.Test{
		Name:   rapid.SampledFrom(propNames).Draw(t, label+".name"),
		Status: rapid.SampledFrom([]report.Status{report.Passed, report.Failed, report.Skipped}).Draw(t, label+".status"),
	}
	if depth < 2 {
		n := rapid.IntRange(0, 3).Draw(t, label+".subtests")
		for i := 0; i < n; i++ {
			tt.Subtests = append(tt.Subtests, drawTest(t, depth+1, fmt.Sprintf("%s.%d", label, i)))
		}
	}
	return tt
}

func drawReport(t *rapid.T) *report.Report {
	var pkgs []*report.Package
	for i := range rapid.IntRange(0, 4).Draw(t, "packages") {
		pkg := &report.Package{Name: fmt.Sprintf("pkg%d", i)}
		for j := range rapid.IntRange(0, 4).Draw(t, fmt.Sprintf("p%d.tests", i)) {
			pkg.Tests = append(pkg.Tests, drawTest(t, 0, fmt.Sprintf("p%d.t%d", i, j)))
		}
		pkgs = append(pkgs, pkg)
	}
	return report.Assemble("prop", time.Time{}, pkgs...)
}

func drawFilter(t *rapid.T) FilterState {
	f := FilterState{Status: rapid.SampledFrom(StatusFilters).Draw(t, "status")}
	f.SetSearch(rapid.SampledFrom(propSearches).Draw(t, "search"))
	return f
}

func descendantMatches(t *report.Test, term string) bool {
	for _, s := range t.Subtests {
		if strings.Contains(strings.ToLower(s.Name), term) || descendantMatches(s, term) {
			return true
		}
	}
	return false
}

func TestApply_VisibilityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := drawReport(t)
		f := drawFilter(t)
		d := Apply(r, f)

		count := 0
		for _, pkg := range r.Packages {
			anyVisible := false
			for _, tt := range pkg.Tests {
				matchesStatus := f.Status == All || StatusFilter(tt.Status) == f.Status
				matchesSearch := f.Search == "" ||
					strings.Contains(strings.ToLower(tt.Name), f.Search) ||
					descendantMatches(tt, f.Search)
				want := matchesStatus && matchesSearch

				if got := d.VisibleTests.Has(tt.ID); got != want {
					t.Fatalf("test %q status=%s filter=%+v: visible=%v want %v", tt.Name, tt.Status, f, got, want)
				}
				if want {
					anyVisible = true
					count++
				}
			}
			if got := d.VisiblePackages.Has(pkg.ID); got != anyVisible {
				t.Fatalf("package %s: visible=%v want %v", pkg.Name, got, anyVisible)
			}
		}
		if d.VisibleCount != count || d.NoResults != (count == 0) {
			t.Fatalf("count=%d noResults=%v, want count=%d", d.VisibleCount, d.NoResults, count)
		}
	})
}

func TestApply_RevealedSubtestsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := drawReport(t)
		f := drawFilter(t)
		d := Apply(r, f)

		for _, pkg := range r.Packages {
			for _, tt := range pkg.Tests {
				if !d.AutoOpen.Has(tt.ID) {
					continue
				}
				// Auto-open only happens for tests revealed through a subtest.
				if f.Search == "" || f.MatchesName(tt.Name) || !d.VisibleTests.Has(tt.ID) {
					t.Fatalf("unexpected auto-open of %q under %+v", tt.Name, f)
				}
				for _, sub := range tt.Subtests {
					shown := !d.HiddenSubtests.Has(sub.ID)
					if want := f.MatchesName(sub.Name); shown != want {
						t.Fatalf("subtest %q shown=%v want %v", sub.Name, shown, want)
					}
				}
			}
		}
	})
}
