package testjson

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// maxLineSize bounds a single NDJSON line; verbose test output can be long.
const maxLineSize = 1024 * 1024

// ParseStream parses go test -json NDJSON from a reader, line by line.
// Returns the parsed results, the number of malformed lines skipped, and any error.
func ParseStream(r io.Reader) ([]TestPackageResult, int, error) {
	return ParseContext(context.Background(), r)
}

// ParseContext is ParseStream with cancellation. See Stream for how the
// reader is released on cancel.
func ParseContext(ctx context.Context, r io.Reader) ([]TestPackageResult, int, error) {
	return ParseWith(ctx, r, nil)
}

// ParseWith is ParseContext that also hands every decoded event to observe,
// after it has been aggregated. observe may be nil.
func ParseWith(ctx context.Context, r io.Reader, observe ProcessFunc) ([]TestPackageResult, int, error) {
	agg := newAggregator()
	fn := agg.processEvent
	if observe != nil {
		fn = func(e TestEvent) {
			agg.processEvent(e)
			observe(e)
		}
	}
	malformed, err := Stream(ctx, r, fn)
	if err != nil {
		return nil, malformed, fmt.Errorf("scanning test output: %w", err)
	}
	return agg.results(), malformed, nil
}

// ParseBytes is a convenience for parsing from a byte slice.
func ParseBytes(data []byte) ([]TestPackageResult, int, error) {
	return ParseStream(bytes.NewReader(data))
}

// scanResult carries a scanned line or terminal error from the scanner goroutine.
type scanResult struct {
	line []byte
	err  error
}

// Stream parses go test -json events line by line and calls fn for each one.
// Stops on EOF or when ctx is cancelled. Returns the number of malformed lines
// skipped and any error.
//
// Cancellation: the scanner runs in a background goroutine. On context cancel,
// Stream closes r (if it implements io.Closer) to unblock the scanner. If r
// does not implement io.Closer (e.g. *bufio.Reader), the caller must close the
// underlying reader externally to prevent a goroutine leak.
func Stream(ctx context.Context, r io.Reader, fn ProcessFunc) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lines := make(chan scanResult)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			// The scanner reuses its buffer.
			cp := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- scanResult{line: cp}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- scanResult{err: err}:
			case <-ctx.Done():
			}
		}
	}()

	var malformed int
	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			return malformed, ctx.Err()
		case res, ok := <-lines:
			if !ok {
				return malformed, nil
			}
			if res.err != nil {
				return malformed, res.err
			}
			line := bytes.TrimSpace(res.line)
			if len(line) == 0 {
				continue
			}
			var event TestEvent
			if err := json.Unmarshal(line, &event); err != nil {
				malformed++
				continue
			}
			fn(event)
		}
	}
}

type aggregator struct {
	packages map[string]*pkgState
	order    []string
}

type pkgState struct {
	name        string
	duration    time.Duration
	coverage    float64
	tests       map[string]*TestResult
	top         []*TestResult
	output      []string // package-level output
	failed      bool
	noTestFiles bool
	buildError  string
	panicked    bool
	panicOutput []string
}

func newAggregator() *aggregator {
	return &aggregator{
		packages: make(map[string]*pkgState),
	}
}

func (a *aggregator) getOrCreate(name string) *pkgState {
	if pkg, ok := a.packages[name]; ok {
		return pkg
	}
	pkg := &pkgState{
		name:  name,
		tests: make(map[string]*TestResult),
	}
	a.packages[name] = pkg
	a.order = append(a.order, name)
	return pkg
}

func (a *aggregator) processEvent(e TestEvent) {
	pkg := a.getOrCreate(e.Package)

	if e.Test == "" {
		pkg.processPackageEvent(e)
		return
	}

	ts := pkg.getOrCreateTest(e.Test, e.Time)
	switch e.Action {
	case ActionRun:
		ts.Started = e.Time
	case ActionPass, ActionSkip:
		// A failure inherited from a subtest outlasts the parent's own result.
		if ts.Status != StatusFailed {
			ts.Status = StatusPassed
			if e.Action == ActionSkip {
				ts.Status = StatusSkipped
			}
		}
		ts.Duration = elapsed(e.Elapsed)
	case ActionFail:
		ts.Status = StatusFailed
		ts.Duration = elapsed(e.Elapsed)
		pkg.failAncestors(ts)
	case ActionOutput:
		output := strings.TrimRight(e.Output, "\n")
		ts.Output = append(ts.Output, output)
		pkg.detectPanic(output)
	}
}

func (pkg *pkgState) processPackageEvent(e TestEvent) {
	switch e.Action {
	case ActionPass:
		pkg.duration = elapsed(e.Elapsed)
	case ActionFail:
		pkg.duration = elapsed(e.Elapsed)
		pkg.failed = true
		// Failed with no tests run: the package did not build.
		if len(pkg.tests) == 0 {
			pkg.buildError = strings.Join(pkg.output, "\n")
		}
	case ActionSkip:
		if e.Elapsed == 0 {
			pkg.noTestFiles = true
		}
	case ActionOutput:
		if e.Output == "?\t"+pkg.name+"\t[no test files]\n" {
			pkg.noTestFiles = true
			return
		}
		output := strings.TrimRight(e.Output, "\n")
		if output == "" {
			return
		}
		pkg.output = append(pkg.output, output)
		pkg.detectPanic(output)

		if strings.Contains(output, "coverage:") && strings.Contains(output, "% of statements") {
			var cov float64
			_, _ = fmt.Sscanf(strings.TrimSpace(output), "coverage: %f%% of statements", &cov)
			if cov > 0 {
				pkg.coverage = cov
			}
		}
	}
}

func (pkg *pkgState) detectPanic(output string) {
	if strings.Contains(output, "panic:") || strings.HasPrefix(output, "goroutine ") {
		pkg.panicked = true
		pkg.panicOutput = append(pkg.panicOutput, output)
	}
}

// getOrCreateTest returns the test for name, creating it and any missing
// ancestors. A parent created on behalf of a subtest takes the subtest's
// time until its own run event arrives.
func (pkg *pkgState) getOrCreateTest(name string, at time.Time) *TestResult {
	if ts, ok := pkg.tests[name]; ok {
		return ts
	}
	ts := &TestResult{Name: name, Started: at}
	pkg.tests[name] = ts

	if parentName, ok := ParentName(name); ok {
		parent := pkg.getOrCreateTest(parentName, at)
		ts.IsSubtest = true
		ts.Parent = parentName
		parent.Subtests = append(parent.Subtests, ts)
	} else {
		pkg.top = append(pkg.top, ts)
	}
	return ts
}

func (pkg *pkgState) failAncestors(ts *TestResult) {
	for ts.IsSubtest {
		parent, ok := pkg.tests[ts.Parent]
		if !ok {
			return
		}
		parent.Status = StatusFailed
		ts = parent
	}
}

func (a *aggregator) results() []TestPackageResult {
	results := make([]TestPackageResult, 0, len(a.order))
	for _, name := range a.order {
		pkg := a.packages[name]
		if pkg.noTestFiles && len(pkg.tests) == 0 {
			continue
		}
		// Skip packages with no test activity
		if len(pkg.tests) == 0 && pkg.buildError == "" && !pkg.panicked {
			continue
		}

		r := TestPackageResult{
			Name:       pkg.name,
			Duration:   pkg.duration,
			Coverage:   pkg.coverage,
			Tests:      pkg.top,
			BuildError: pkg.buildError,
			Panicked:   pkg.panicked,
		}
		if pkg.panicked {
			r.PanicOutput = pkg.panicOutput
		}

		sortByStart(r.Tests)
		for _, ts := range r.Tests {
			pkg.finalize(ts, &r)
		}
		results = append(results, r)
	}
	return results
}

// finalize resolves missing statuses, orders subtests, and counts leaves.
func (pkg *pkgState) finalize(ts *TestResult, r *TestPackageResult) {
	if ts.Status == "" {
		// No terminal event: the run was cut short by a panic or timeout.
		if pkg.failed || pkg.panicked {
			ts.Status = StatusFailed
		} else {
			ts.Status = StatusPassed
		}
	}
	if len(ts.Subtests) > 0 {
		sortByStart(ts.Subtests)
		for _, sub := range ts.Subtests {
			pkg.finalize(sub, r)
		}
		return
	}
	switch ts.Status {
	case StatusPassed:
		r.Passed++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
}

func sortByStart(tests []*TestResult) {
	sort.SliceStable(tests, func(i, j int) bool {
		return tests[i].Started.Before(tests[j].Started)
	})
}

func elapsed(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
