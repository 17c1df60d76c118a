// Package view is the presentation model of a test report. It decides which
// packages and tests are visible under a status/search filter and which
// sections are expanded. Computation is pure; renderers apply the resulting
// Frame in one pass.
package view

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/gotestreport/pkg/report"
)

// StatusFilter restricts visible tests to one status, or none.
type StatusFilter string

const (
	All     StatusFilter = "all"
	Passed  StatusFilter = StatusFilter(report.Passed)
	Failed  StatusFilter = StatusFilter(report.Failed)
	Skipped StatusFilter = StatusFilter(report.Skipped)
)

// StatusFilters lists the filters in display order.
var StatusFilters = []StatusFilter{All, Passed, Failed, Skipped}

// ParseStatus parses a status filter name. The empty string means All.
func ParseStatus(s string) (StatusFilter, error) {
	switch v := StatusFilter(strings.ToLower(strings.TrimSpace(s))); v {
	case "", All:
		return All, nil
	case Passed, Failed, Skipped:
		return v, nil
	default:
		return All, fmt.Errorf("unknown status filter %q (expected all, passed, failed, skipped)", s)
	}
}

// FilterState is the session-scoped filter: one status and a search term.
// Search is stored normalised (trimmed, lower case).
type FilterState struct {
	Status StatusFilter `json:"status"`
	Search string       `json:"search"`
}

// NewFilterState returns the unfiltered state.
func NewFilterState() FilterState {
	return FilterState{Status: All}
}

// NormalizeSearch trims and lower-cases a raw search term.
func NormalizeSearch(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// SetSearch stores the normalised form of raw.
func (f *FilterState) SetSearch(raw string) {
	f.Search = NormalizeSearch(raw)
}

// ToggleStatus selects s, or resets to All when s is already selected.
func (f *FilterState) ToggleStatus(s StatusFilter) {
	if f.Status == s {
		f.Status = All
		return
	}
	f.Status = s
}

// Clear resets both the status and the search term.
func (f *FilterState) Clear() {
	f.Status = All
	f.Search = ""
}

// Active reports whether any filter narrows the report.
func (f FilterState) Active() bool {
	return (f.Status != All && f.Status != "") || f.Search != ""
}

// MatchesStatus applies the status filter to a top-level test status.
func (f FilterState) MatchesStatus(st report.Status) bool {
	return f.Status == All || f.Status == "" || StatusFilter(st) == f.Status
}

// MatchesName reports whether name contains the search term.
// An empty term matches everything.
func (f FilterState) MatchesName(name string) bool {
	return f.Search == "" || strings.Contains(strings.ToLower(name), f.Search)
}

// TagKind identifies a part of the filter summary.
type TagKind int

const (
	TagStatus TagKind = iota
	TagSearch
	TagClear
)

// FilterTag is one part of the filter summary.
type FilterTag struct {
	Kind   TagKind `json:"kind"`
	Prefix string  `json:"prefix,omitempty"` // "Showing", "Search:"
	Text   string  `json:"text"`
	Value  string  `json:"value,omitempty"` // status name or search term
}

// IsClear reports whether the tag is the clear-all affordance.
func (t FilterTag) IsClear() bool { return t.Kind == TagClear }

// FilterSummary describes the active filters.
type FilterSummary struct {
	Tags []FilterTag `json:"tags,omitempty"`
}

var titleCaser = cases.Title(language.English)

// Summary describes the active filters: a status tag unless the status is
// All, a search tag when the term is set, and a clear affordance when
// either is present. It is empty when no filter is active.
func (f FilterState) Summary() FilterSummary {
	var s FilterSummary
	if f.Status != All && f.Status != "" {
		s.Tags = append(s.Tags, FilterTag{
			Kind:   TagStatus,
			Prefix: "Showing",
			Text:   titleCaser.String(string(f.Status)) + " tests",
			Value:  string(f.Status),
		})
	}
	if f.Search != "" {
		s.Tags = append(s.Tags, FilterTag{
			Kind:   TagSearch,
			Prefix: "Search:",
			Text:   f.Search,
			Value:  f.Search,
		})
	}
	if len(s.Tags) > 0 {
		s.Tags = append(s.Tags, FilterTag{Kind: TagClear, Text: "Clear all"})
	}
	return s
}

// Empty reports whether no filter is described.
func (s FilterSummary) Empty() bool { return len(s.Tags) == 0 }

// String renders the summary as one line, e.g.
// "Showing Failed tests and Search: time [Clear all]".
func (s FilterSummary) String() string {
	var parts []string
	clearTag := ""
	for _, t := range s.Tags {
		if t.Kind == TagClear {
			clearTag = " [" + t.Text + "]"
			continue
		}
		parts = append(parts, t.Prefix+" "+t.Text)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " and ") + clearTag
}
