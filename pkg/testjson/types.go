// Package testjson parses go test -json NDJSON streams.
package testjson

import "time"

// Actions emitted by test2json.
const (
	ActionStart  = "start"
	ActionRun    = "run"
	ActionPause  = "pause"
	ActionCont   = "cont"
	ActionPass   = "pass"
	ActionFail   = "fail"
	ActionSkip   = "skip"
	ActionOutput = "output"
	ActionBench  = "bench"
)

// Result statuses. They match the values of data-test-status in the HTML report.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// TestEvent represents a single event from go test -json output.
type TestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"` // start, run, pass, fail, skip, output, bench, pause, cont
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

// ProcessFunc receives one decoded event.
type ProcessFunc func(TestEvent)

// TestResult represents a single test with its status and subtests.
type TestResult struct {
	Name      string // full name as reported, e.g. "TestA/case_1"
	Status    string // "passed", "failed", "skipped"
	Duration  time.Duration
	Started   time.Time
	Output    []string // output lines, trailing newline stripped
	Subtests  []*TestResult
	IsSubtest bool
	Parent    string // full name of the parent test, empty for top-level tests
}

// Leaves returns the number of tests in this subtree that have no subtests.
func (t *TestResult) Leaves() int {
	if len(t.Subtests) == 0 {
		return 1
	}
	n := 0
	for _, s := range t.Subtests {
		n += s.Leaves()
	}
	return n
}

// TestPackageResult represents aggregated results for one package.
// Passed, Failed and Skipped count leaf tests only: a parent whose
// subtests are counted is not counted itself.
type TestPackageResult struct {
	Name        string
	Passed      int
	Failed      int
	Skipped     int
	Duration    time.Duration
	Coverage    float64
	Tests       []*TestResult // top-level tests in run order
	BuildError  string        // non-empty if package failed to build
	Panicked    bool
	PanicOutput []string
}

// TotalTests returns the total number of tests in this package.
func (r *TestPackageResult) TotalTests() int {
	return r.Passed + r.Failed + r.Skipped
}

// Status returns "pass", "fail", or "skip" for the package.
func (r *TestPackageResult) Status() string {
	if r.BuildError != "" || r.Panicked || r.Failed > 0 {
		return "fail"
	}
	if r.Passed == 0 && r.Skipped > 0 {
		return "skip"
	}
	return "pass"
}

// FailedTests returns every failed test in the package, depth first.
func (r *TestPackageResult) FailedTests() []*TestResult {
	var out []*TestResult
	var walk func([]*TestResult)
	walk = func(tests []*TestResult) {
		for _, t := range tests {
			if t.Status == StatusFailed {
				out = append(out, t)
			}
			walk(t.Subtests)
		}
	}
	walk(r.Tests)
	return out
}
