// Package progress shows what go test is doing while its -json stream is
// read: a line per finished package and a footer of running packages.
package progress

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dkoosis/gotestreport/pkg/render"
	"github.com/dkoosis/gotestreport/pkg/testjson"
)

type pkgProgress struct {
	name        string
	started     time.Time
	passed      int
	failed      int
	skipped     int
	currentTest string
}

func (p *pkgProgress) finished() int { return p.passed + p.failed + p.skipped }

// Tracker consumes test events. It is not safe for concurrent use; feed it
// from the goroutine that parses the stream.
type Tracker struct {
	tw    *termWriter
	theme render.Theme
	now   func() time.Time

	active map[string]*pkgProgress
	order  []string

	packages int
	passed   int
	failed   int
	skipped  int
}

// New creates a tracker drawing on out, usually a terminal's stderr.
func New(out io.Writer, width, height int, theme render.Theme) *Tracker {
	return &Tracker{
		tw:     newTermWriter(out, width, height),
		theme:  theme,
		now:    time.Now,
		active: make(map[string]*pkgProgress),
	}
}

// Observe handles one event. Its signature matches testjson.ProcessFunc.
func (t *Tracker) Observe(e testjson.TestEvent) {
	switch e.Action {
	case testjson.ActionStart:
		t.pkg(e)
	case testjson.ActionRun:
		t.pkg(e).currentTest = e.Test
	case testjson.ActionPass, testjson.ActionFail, testjson.ActionSkip:
		if e.Test == "" {
			t.finishPackage(e)
			break
		}
		t.countTest(t.pkg(e), e.Action)
	default:
		return
	}
	t.redraw()
}

func (t *Tracker) pkg(e testjson.TestEvent) *pkgProgress {
	p, ok := t.active[e.Package]
	if !ok {
		started := e.Time
		if started.IsZero() {
			started = t.now()
		}
		p = &pkgProgress{name: e.Package, started: started}
		t.active[e.Package] = p
		t.order = append(t.order, e.Package)
	}
	return p
}

func (t *Tracker) countTest(p *pkgProgress, action string) {
	switch action {
	case testjson.ActionPass:
		p.passed++
		t.passed++
	case testjson.ActionFail:
		p.failed++
		t.failed++
	case testjson.ActionSkip:
		p.skipped++
		t.skipped++
	}
}

func (t *Tracker) finishPackage(e testjson.TestEvent) {
	p, ok := t.active[e.Package]
	delete(t.active, e.Package)
	if !ok || p.finished() == 0 {
		// [no test files] and other empty packages stay quiet.
		return
	}
	t.packages++

	status := testjson.StatusPassed
	if e.Action == testjson.ActionFail {
		status = testjson.StatusFailed
	}
	icon, style := t.theme.StatusStyle(status)
	t.tw.EraseFooter()
	t.tw.PrintLine(fmt.Sprintf("%s %-40s %s", style.Render(icon), e.Package,
		t.theme.Muted.Render(fmt.Sprintf("%d/%d passed  %.2fs", p.passed, p.finished(), e.Elapsed))))
}

func (t *Tracker) redraw() {
	if len(t.active) == 0 {
		t.tw.EraseFooter()
		return
	}
	now := t.now()
	lines := []string{t.theme.Muted.Render(fmt.Sprintf("running %d package(s)  %d passed  %d failed  %d skipped",
		len(t.active), t.passed, t.failed, t.skipped))}
	for _, name := range t.order {
		p, ok := t.active[name]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s [%d] %s %.1fs",
			shortName(p.name), p.finished(), p.currentTest, now.Sub(p.started).Seconds()))
	}
	t.tw.DrawFooter(lines)
}

// Finish erases the footer and prints a summary line.
func (t *Tracker) Finish() {
	t.tw.EraseFooter()
	if t.packages == 0 {
		return
	}
	total := t.passed + t.failed + t.skipped
	status := testjson.StatusPassed
	if t.failed > 0 {
		status = testjson.StatusFailed
	}
	icon, style := t.theme.StatusStyle(status)
	t.tw.PrintLine(style.Render(fmt.Sprintf("%s %d results in %d package(s): %d passed, %d failed, %d skipped",
		icon, total, t.packages, t.passed, t.failed, t.skipped)))
}

// shortName returns the last path segment of a package name.
func shortName(pkg string) string {
	if i := strings.LastIndex(pkg, "/"); i >= 0 {
		return pkg[i+1:]
	}
	return pkg
}
