package render

import (
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/view"
)

// JSONVersion is the schema version of the JSON output.
const JSONVersion = "1"

// JSON renders the visible part of a frame as structured JSON for
// automation. Hidden packages, tests and subtests are left out.
type JSON struct {
	Indent bool
}

// NewJSON creates a JSON renderer.
func NewJSON(indent bool) *JSON {
	return &JSON{Indent: indent}
}

// jsonOutput is the top-level JSON structure.
type jsonOutput struct {
	Version      string             `json:"version"`
	Title        string             `json:"title"`
	Date         time.Time          `json:"date"`
	DurationNS   time.Duration      `json:"duration_ns"`
	Summary      report.Summary     `json:"summary"`
	Filter       view.FilterState   `json:"filter"`
	FilterText   string             `json:"filter_text,omitempty"`
	VisibleCount int                `json:"visible_count"`
	NoResults    bool               `json:"no_results"`
	Malformed    int                `json:"malformed,omitempty"`
	Packages     []jsonPackage      `json:"packages"`
	BuildErrors  []jsonBuildFailure `json:"build_errors,omitempty"`
}

type jsonPackage struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Summary    report.Summary `json:"summary"`
	DurationNS time.Duration  `json:"duration_ns"`
	Coverage   float64        `json:"coverage,omitempty"`
	Panicked   bool           `json:"panicked,omitempty"`
	Tests      []jsonTest     `json:"tests"`
}

type jsonTest struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	FullName    string        `json:"full_name"`
	DisplayName string        `json:"display_name"`
	Status      report.Status `json:"status"`
	DurationNS  time.Duration `json:"duration_ns"`
	Output      []string      `json:"output,omitempty"`
	Subtests    []jsonTest    `json:"subtests,omitempty"`
}

type jsonBuildFailure struct {
	Package string `json:"package"`
	Output  string `json:"output"`
}

// Render writes the frame to w as JSON.
func (j *JSON) Render(w io.Writer, r *report.Report, f view.Frame) error {
	out := jsonOutput{
		Version:      JSONVersion,
		Title:        r.Title,
		Date:         r.Date,
		DurationNS:   r.Duration,
		Summary:      r.Summary,
		Filter:       f.Filter,
		FilterText:   f.Summary.String(),
		VisibleCount: f.VisibleCount,
		NoResults:    f.NoResults,
		Malformed:    r.Malformed,
		Packages:     make([]jsonPackage, 0, len(r.Packages)),
	}
	for _, pkg := range r.Packages {
		if !f.PackageVisible(pkg.ID) {
			continue
		}
		jp := jsonPackage{
			ID:         pkg.ID,
			Name:       pkg.Name,
			Summary:    pkg.Summary,
			DurationNS: pkg.Duration,
			Coverage:   pkg.Coverage,
			Panicked:   pkg.Panicked,
			Tests:      []jsonTest{},
		}
		for _, t := range pkg.Tests {
			if f.TestVisible(t.ID) {
				jp.Tests = append(jp.Tests, toJSONTest(t, f))
			}
		}
		out.Packages = append(out.Packages, jp)
	}
	for _, pkg := range r.BuildFailures() {
		out.BuildErrors = append(out.BuildErrors, jsonBuildFailure{Package: pkg.Name, Output: pkg.BuildError})
	}

	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func toJSONTest(t *report.Test, f view.Frame) jsonTest {
	jt := jsonTest{
		ID:          t.ID,
		Name:        t.Name,
		FullName:    t.FullName,
		DisplayName: t.DisplayName,
		Status:      t.Status,
		DurationNS:  t.Duration,
		Output:      t.Output,
	}
	for _, sub := range visibleSubtests(t, f) {
		jt.Subtests = append(jt.Subtests, toJSONTest(sub, f))
	}
	return jt
}
