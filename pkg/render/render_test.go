package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/view"
)

func sampleReport() *report.Report {
	r := report.Assemble("Nightly <run>", time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		&report.Package{ID: "pa", Name: "example.com/a", Duration: 1500 * time.Millisecond, Coverage: 81.5, Tests: []*report.Test{
			{ID: "ta", Name: "TestAlpha", DisplayName: "Test Alpha", Status: report.Passed, Duration: 10 * time.Millisecond},
			{ID: "tb", Name: "TestBeta", DisplayName: "Test Beta", Status: report.Failed, Output: []string{
				"=== RUN   TestBeta",
				"DEBUG: payload",
				"{",
				`  "k": "<v>"`,
				"}",
				"beta_test.go:12: boom",
			}},
		}},
		&report.Package{ID: "pb", Name: "example.com/b", Tests: []*report.Test{
			{ID: "tc", Name: "TestGamma", Status: report.Passed, Subtests: []*report.Test{
				{ID: "tc1", Name: "timeout", Status: report.Passed},
				{ID: "tc2", Name: "count", Status: report.Skipped},
			}},
		}},
	)
	return r
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.00s", FormatDuration(0))
	assert.Equal(t, "1.50s", FormatDuration(1500*time.Millisecond))
}

func TestThemeByName(t *testing.T) {
	for _, name := range Palettes {
		assert.Equal(t, name, ThemeByName(name, true).Name)
	}
	assert.Equal(t, PaletteDefault, ThemeByName("neon", false).Name)
	assert.True(t, ThemeByName(PaletteOrca, true).Dark)

	icon, _ := MonoTheme(false).StatusStyle("failed")
	assert.Equal(t, "x", icon)
}

func TestHTML_DOMContract(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, NewHTML().Render(&buf, r, view.New(r).Frame()))
	out := buf.String()

	for _, want := range []string{
		`id="searchField"`,
		`id="filterStatus"`,
		`id="noResults"`,
		`id="checkbox"`,
		`id="debug-checkbox"`,
		`class="summary-card failed" data-filter="failed"`,
		`class="package-header open"`,
		`class="package-content open"`,
		`data-test-name="TestBeta" data-test-status="failed"`,
		`class="test-item subtest-item passed"`,
		`class="subtest-container"`,
		`class="subtest-list"`,
		`<div class="debug-content">DEBUG: payload`,
		`class="test-output open"`,
	} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "Nightly &lt;run&gt;", "title is escaped")
	assert.NotContains(t, out, `"<v>"`, "output is escaped")
	assert.Contains(t, out, "togglePackage", "script is embedded")
	assert.Contains(t, out, ".debug-content", "stylesheet is embedded")
}

func TestHTML_InitialFilterFromFrame(t *testing.T) {
	r := sampleReport()
	c := view.New(r)
	c.SetSearch("time")

	var buf bytes.Buffer
	require.NoError(t, NewHTML().Render(&buf, r, c.Frame()))
	out := buf.String()

	assert.Contains(t, out, `class="package hidden" data-package="example.com/a"`)
	assert.Contains(t, out, `class="test-item passed open" data-test-id="tc"`)
	assert.Contains(t, out, `class="test-item subtest-item skipped hidden" data-test-id="tc2"`)
	assert.Contains(t, out, `value="time"`)
	assert.Contains(t, out, `<span class="filter-tag time">time</span>`)
	assert.Contains(t, out, `id="noResults" style="display: none"`)
}

func TestTerminal_Render(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, NewTerminal(MonoTheme(false), 100, false).Render(&buf, r, view.New(r).Frame()))
	out := buf.String()

	assert.Contains(t, out, "Nightly <run>")
	assert.Contains(t, out, "[Total 4]")
	assert.Contains(t, out, "Failed 1")
	assert.Contains(t, out, "81.5% coverage")
	assert.Contains(t, out, "x Test Beta")
	assert.Contains(t, out, "beta_test.go:12: boom")
	assert.NotContains(t, out, "DEBUG: payload", "debug hidden by default")
	assert.NotContains(t, out, "timeout", "closed package hides its tests")
}

func TestTerminal_ShowDebugAndNoResults(t *testing.T) {
	r := sampleReport()
	c := view.New(r)

	var buf bytes.Buffer
	require.NoError(t, NewTerminal(MonoTheme(false), 80, true).Render(&buf, r, c.Frame()))
	assert.Contains(t, buf.String(), "DEBUG: payload")
	assert.Contains(t, buf.String(), `  "k": "<v>"`)

	buf.Reset()
	require.NoError(t, NewTerminal(MonoTheme(false), 80, true).Render(&buf, r, c.SetSearch("zzz")))
	assert.Contains(t, buf.String(), "No tests match the current filters.")
	assert.Contains(t, buf.String(), "Search: zzz [Clear all]")
	assert.False(t, strings.Contains(buf.String(), "example.com/a"))
}

func TestJSON_RendersVisibleFrame(t *testing.T) {
	r := sampleReport()
	c := view.New(r)
	c.SetSearch("time")

	var buf bytes.Buffer
	require.NoError(t, NewJSON(true).Render(&buf, r, c.Frame()))

	var got struct {
		Version      string `json:"version"`
		VisibleCount int    `json:"visible_count"`
		Filter       struct {
			Status string `json:"status"`
			Search string `json:"search"`
		} `json:"filter"`
		Packages []struct {
			Name  string `json:"name"`
			Tests []struct {
				Name     string `json:"name"`
				Subtests []struct {
					Name string `json:"name"`
				} `json:"subtests"`
			} `json:"tests"`
		} `json:"packages"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, JSONVersion, got.Version)
	assert.Equal(t, 1, got.VisibleCount)
	assert.Equal(t, "time", got.Filter.Search)
	require.Len(t, got.Packages, 1)
	assert.Equal(t, "example.com/b", got.Packages[0].Name)
	require.Len(t, got.Packages[0].Tests, 1)
	require.Len(t, got.Packages[0].Tests[0].Subtests, 1)
	assert.Equal(t, "timeout", got.Packages[0].Tests[0].Subtests[0].Name)
}
