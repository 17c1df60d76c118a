package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/dkoosis/gotestreport/pkg/debugblock"
	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/view"
)

//go:embed templates/*
var templatesFS embed.FS

var (
	htmlOnce sync.Once
	htmlTmpl *template.Template
	htmlCSS  template.CSS
	htmlJS   template.JS
	htmlErr  error
)

func loadHTML() (*template.Template, error) {
	htmlOnce.Do(func() {
		css, err := templatesFS.ReadFile("templates/report.css")
		if err != nil {
			htmlErr = fmt.Errorf("read stylesheet: %w", err)
			return
		}
		js, err := templatesFS.ReadFile("templates/report.js")
		if err != nil {
			htmlErr = fmt.Errorf("read script: %w", err)
			return
		}
		htmlCSS = template.CSS(css) //nolint:gosec // embedded asset
		htmlJS = template.JS(js)    //nolint:gosec // embedded asset

		htmlTmpl, err = template.New("report.html.tmpl").Funcs(template.FuncMap{
			"indicator": view.Indicator,
			"duration":  FormatDuration,
		}).ParseFS(templatesFS, "templates/report.html.tmpl")
		if err != nil {
			htmlErr = fmt.Errorf("parse template: %w", err)
		}
	})
	return htmlTmpl, htmlErr
}

// HTML renders a self-contained interactive page. Every package, test and
// subtest is present in the page; the frame decides which start hidden or
// open, and the embedded script applies the same filter rules in the
// browser.
type HTML struct{}

// NewHTML creates an HTML renderer.
func NewHTML() *HTML { return &HTML{} }

// Render writes the page to w.
func (h *HTML) Render(w io.Writer, r *report.Report, f view.Frame) error {
	tmpl, err := loadHTML()
	if err != nil {
		return err
	}
	data := htmlData{
		Report: r,
		Frame:  f,
		CSS:    htmlCSS,
		JS:     htmlJS,
		Cards: []htmlCard{
			{Filter: view.All, Label: "Total", Count: r.Summary.Total, Active: f.StatusActive(view.All)},
			{Filter: view.Passed, Label: "Passed", Count: r.Summary.Passed, Active: f.StatusActive(view.Passed)},
			{Filter: view.Failed, Label: "Failed", Count: r.Summary.Failed, Active: f.StatusActive(view.Failed)},
			{Filter: view.Skipped, Label: "Skipped", Count: r.Summary.Skipped, Active: f.StatusActive(view.Skipped)},
		},
	}
	for _, pkg := range r.Packages {
		data.Packages = append(data.Packages, htmlPackage{P: pkg, f: f})
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	return nil
}

type htmlData struct {
	Report   *report.Report
	Frame    view.Frame
	Cards    []htmlCard
	Packages []htmlPackage
	CSS      template.CSS
	JS       template.JS
}

type htmlCard struct {
	Filter view.StatusFilter
	Label  string
	Count  int
	Active bool
}

type htmlPackage struct {
	P *report.Package
	f view.Frame
}

func (p htmlPackage) Hidden() bool { return !p.f.PackageVisible(p.P.ID) }
func (p htmlPackage) Open() bool   { return p.f.PackageOpen(p.P.ID) }

func (p htmlPackage) Tests() []htmlTest {
	out := make([]htmlTest, 0, len(p.P.Tests))
	for _, t := range p.P.Tests {
		out = append(out, htmlTest{T: t, f: p.f})
	}
	return out
}

type htmlTest struct {
	T       *report.Test
	Subtest bool
	f       view.Frame
}

func (t htmlTest) Hidden() bool {
	if t.Subtest {
		return !t.f.SubtestVisible(t.T.ID)
	}
	return !t.f.TestVisible(t.T.ID)
}

func (t htmlTest) Open() bool         { return t.f.TestOpen(t.T.ID) }
func (t htmlTest) OutputOpen() bool   { return t.f.OutputOpen(t.T.ID) }
func (t htmlTest) SubtestsOpen() bool { return t.f.SubtestsOpen(t.T.ID) }

// Indicator is the glyph of the test's toggle.
func (t htmlTest) Indicator() string {
	if t.T.HasSubtests() {
		return view.Indicator(t.Open())
	}
	return view.Indicator(t.OutputOpen())
}

func (t htmlTest) Segments() []debugblock.Segment { return outputSegments(t.T) }

func (t htmlTest) Subtests() []htmlTest {
	out := make([]htmlTest, 0, len(t.T.Subtests))
	for _, s := range t.T.Subtests {
		out = append(out, htmlTest{T: s, Subtest: true, f: t.f})
	}
	return out
}
