package view

import (
	"time"

	"github.com/dkoosis/gotestreport/pkg/report"
)

// fixtureReport has one package with a passed and a failed test, and one
// package whose tests exercise search through subtests.
func fixtureReport() *report.Report {
	return report.Assemble("fixture", time.Time{},
		&report.Package{ID: "pkgA", Name: "example.com/a", Tests: []*report.Test{
			{ID: "A", Name: "A", Status: report.Passed},
			{ID: "B", Name: "B", Status: report.Failed, Output: []string{"boom"}},
		}},
		&report.Package{ID: "pkgB", Name: "example.com/b", Tests: []*report.Test{
			{ID: "parseTime", Name: "parseTime", Status: report.Passed},
			{ID: "other", Name: "other", Status: report.Passed, Subtests: []*report.Test{
				{ID: "timeout", Name: "timeout", Status: report.Passed},
				{ID: "count", Name: "count", Status: report.Passed},
			}},
		}},
	)
}
