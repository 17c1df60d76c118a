// Package report holds the test report model shared by every renderer:
// packages, tests and subtests with stable IDs and leaf-count summaries.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/dkoosis/gotestreport/pkg/testjson"
)

// Status is the outcome of a test.
type Status string

const (
	Passed  Status = testjson.StatusPassed
	Failed  Status = testjson.StatusFailed
	Skipped Status = testjson.StatusSkipped
)

// Summary counts leaf tests.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Add counts one leaf with the given status.
func (s *Summary) Add(st Status) {
	s.Total++
	switch st {
	case Passed:
		s.Passed++
	case Failed:
		s.Failed++
	case Skipped:
		s.Skipped++
	}
}

// Test is a test item. Subtests have the same shape.
type Test struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"` // leaf segment, the searchable name
	FullName    string        `json:"full_name"`
	DisplayName string        `json:"display_name"`
	Status      Status        `json:"status"`
	Duration    time.Duration `json:"duration_ns"`
	Output      []string      `json:"output,omitempty"`
	Subtests    []*Test       `json:"subtests,omitempty"`
}

// HasSubtests reports whether the test has nested subtests.
func (t *Test) HasSubtests() bool { return len(t.Subtests) > 0 }

// WalkSubtests calls fn for every descendant subtest, depth first.
func (t *Test) WalkSubtests(fn func(*Test)) {
	for _, s := range t.Subtests {
		fn(s)
		s.WalkSubtests(fn)
	}
}

// Package groups the tests of one Go package.
type Package struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Tests      []*Test       `json:"tests"`
	Summary    Summary       `json:"summary"`
	Duration   time.Duration `json:"duration_ns"`
	Coverage   float64       `json:"coverage,omitempty"`
	BuildError string        `json:"build_error,omitempty"`
	Panicked   bool          `json:"panicked,omitempty"`
}

// HasFailures reports whether the package contains a failed test.
func (p *Package) HasFailures() bool {
	if p.Summary.Failed > 0 {
		return true
	}
	for _, t := range p.Tests {
		if t.Status == Failed {
			return true
		}
	}
	return false
}

// Report is a complete test report.
type Report struct {
	Title     string        `json:"title"`
	Date      time.Time     `json:"date"`
	Duration  time.Duration `json:"duration_ns"`
	Summary   Summary       `json:"summary"`
	Packages  []*Package    `json:"packages"`
	Malformed int           `json:"malformed,omitempty"`

	tests    map[string]*Test
	packages map[string]*Package
}

// New builds a report from parsed results. Packages are ordered by name.
func New(title string, date time.Time, results []testjson.TestPackageResult) *Report {
	sorted := make([]testjson.TestPackageResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	pkgs := make([]*Package, 0, len(sorted))
	for _, res := range sorted {
		pkg := &Package{
			Name:       res.Name,
			Duration:   res.Duration,
			Coverage:   res.Coverage,
			BuildError: res.BuildError,
			Panicked:   res.Panicked,
		}
		for _, tr := range res.Tests {
			pkg.Tests = append(pkg.Tests, convert(tr))
		}
		pkgs = append(pkgs, pkg)
	}
	return Assemble(title, date, pkgs...)
}

func convert(tr *testjson.TestResult) *Test {
	t := &Test{
		Name:        testjson.LeafName(tr.Name),
		FullName:    tr.Name,
		DisplayName: testjson.LeafName(testjson.FormatName(tr.Name)),
		Status:      Status(tr.Status),
		Duration:    tr.Duration,
		Output:      tr.Output,
	}
	for _, sub := range tr.Subtests {
		t.Subtests = append(t.Subtests, convert(sub))
	}
	return t
}

// Assemble indexes packages into a report, assigning IDs that are missing
// and recomputing summaries. Package order is kept.
func Assemble(title string, date time.Time, pkgs ...*Package) *Report {
	r := &Report{
		Title:    title,
		Date:     date,
		Packages: pkgs,
		tests:    make(map[string]*Test),
		packages: make(map[string]*Package),
	}
	for i, pkg := range pkgs {
		if pkg.ID == "" {
			pkg.ID = fmt.Sprintf("p%d", i)
		}
		r.packages[pkg.ID] = pkg
		pkg.Summary = Summary{}
		seq := 0
		for _, t := range pkg.Tests {
			r.index(pkg, t, &seq)
		}
		r.Duration += pkg.Duration
		r.Summary.Total += pkg.Summary.Total
		r.Summary.Passed += pkg.Summary.Passed
		r.Summary.Failed += pkg.Summary.Failed
		r.Summary.Skipped += pkg.Summary.Skipped
	}
	return r
}

func (r *Report) index(pkg *Package, t *Test, seq *int) {
	*seq++
	if t.ID == "" {
		t.ID = fmt.Sprintf("%s-t%d", pkg.ID, *seq)
	}
	if t.FullName == "" {
		t.FullName = t.Name
	}
	if t.DisplayName == "" {
		t.DisplayName = t.Name
	}
	r.tests[t.ID] = t
	for _, sub := range t.Subtests {
		r.index(pkg, sub, seq)
	}
	if !t.HasSubtests() {
		pkg.Summary.Add(t.Status)
	}
}

// Test returns the test with the given ID, or nil.
func (r *Report) Test(id string) *Test { return r.tests[id] }

// Package returns the package with the given ID, or nil.
func (r *Report) Package(id string) *Package { return r.packages[id] }

// BuildFailures returns packages that failed to build.
func (r *Report) BuildFailures() []*Package {
	var out []*Package
	for _, p := range r.Packages {
		if p.BuildError != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasFailures reports whether any test failed or any package failed to build.
func (r *Report) HasFailures() bool {
	if r.Summary.Failed > 0 {
		return true
	}
	for _, p := range r.Packages {
		if p.BuildError != "" || p.Panicked {
			return true
		}
	}
	return false
}
