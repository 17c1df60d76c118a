package view

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/testjson"
)

func TestNew_OpensFailuresAndShowsEverything(t *testing.T) {
	c := New(fixtureReport())
	f := c.Frame()

	assert.Equal(t, All, f.Filter.Status)
	assert.True(t, f.Summary.Empty())
	assert.Equal(t, 4, f.VisibleCount)
	assert.True(t, f.PackageOpen("pkgA"))
	assert.True(t, f.TestOpen("B"))
	assert.True(t, f.OutputOpen("B"))
	assert.False(t, f.PackageOpen("pkgB"))
	assert.True(t, f.StatusActive(All))
}

func TestController_SelectStatusTwiceResetsToAll(t *testing.T) {
	c := New(fixtureReport())

	f := c.SelectStatus(Failed)
	assert.True(t, f.StatusActive(Failed))
	assert.True(t, f.TestVisible("B"))
	assert.False(t, f.TestVisible("A"))
	assert.False(t, f.PackageVisible("pkgB"))
	assert.Equal(t, "Showing Failed tests [Clear all]", f.Summary.String())

	f = c.SelectStatus(Failed)
	assert.True(t, f.StatusActive(All))
	assert.Equal(t, 4, f.VisibleCount)
}

func TestController_ClearFilters(t *testing.T) {
	c := New(fixtureReport())
	c.SelectStatus(Skipped)
	c.SetSearch("zzz")
	assert.True(t, c.Frame().NoResults)

	f := c.ClearFilters()
	assert.True(t, f.Summary.Empty())
	assert.False(t, f.NoResults)
	assert.Equal(t, NewFilterState(), c.Filter())
}

func TestController_SearchRevealPersists(t *testing.T) {
	c := New(fixtureReport())

	f := c.SetSearch("TIME")
	assert.True(t, f.TestVisible("other"))
	assert.True(t, f.TestOpen("other"))
	assert.True(t, f.SubtestsOpen("other"))
	assert.True(t, f.SubtestVisible("timeout"))
	assert.False(t, f.SubtestVisible("count"))

	f = c.SetSearch("")
	assert.True(t, f.TestOpen("other"), "revealed tests stay open")
	assert.True(t, f.SubtestVisible("count"))
}

func TestController_FrameIsSnapshot(t *testing.T) {
	c := New(fixtureReport())
	before := c.Frame()

	c.TogglePackage("pkgB")
	c.SelectStatus(Passed)

	assert.False(t, before.PackageOpen("pkgB"))
	assert.True(t, before.TestVisible("B"))
	assert.True(t, c.Frame().PackageOpen("pkgB"))
}

func TestController_ToggleDispatch(t *testing.T) {
	c := New(fixtureReport())

	f := c.Toggle("pkgB")
	assert.True(t, f.PackageOpen("pkgB"))

	f = c.Toggle("A")
	assert.True(t, f.OutputOpen("A"))
	assert.False(t, f.TestOpen("A"))

	f = c.Toggle("other")
	assert.True(t, f.TestOpen("other"))
	assert.True(t, f.SubtestsOpen("other"))
}

func TestController_SetFilterNormalises(t *testing.T) {
	c := New(fixtureReport())
	f := c.SetFilter(FilterState{Search: "  Parse "})

	assert.Equal(t, All, f.Filter.Status)
	assert.Equal(t, "parse", f.Filter.Search)
	assert.True(t, f.TestVisible("parseTime"))
	assert.Equal(t, 1, f.VisibleCount)
}

func TestController_ExpansionIndependentOfFilter(t *testing.T) {
	c := New(fixtureReport())
	c.TogglePackage("pkgB")
	c.SelectStatus(Failed)

	f := c.Frame()
	assert.False(t, f.PackageVisible("pkgB"))
	assert.True(t, f.PackageOpen("pkgB"))
}

func TestNew_OpensParentOfFailedSubtest(t *testing.T) {
	input := strings.Join([]string{
		`{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"p","Test":"TestParent"}`,
		`{"Time":"2024-01-01T00:00:01Z","Action":"run","Package":"p","Test":"TestParent/broken"}`,
		`{"Time":"2024-01-01T00:00:01Z","Action":"fail","Package":"p","Test":"TestParent/broken","Elapsed":0.01}`,
		`{"Time":"2024-01-01T00:00:02Z","Action":"pass","Package":"p","Test":"TestParent","Elapsed":0.05}`,
		`{"Time":"2024-01-01T00:00:02Z","Action":"fail","Package":"p","Elapsed":0.1}`,
	}, "\n")
	results, _, err := testjson.ParseBytes([]byte(input))
	require.NoError(t, err)
	rep := report.New("parsed", time.Time{}, results)
	require.Len(t, rep.Packages, 1)
	require.Len(t, rep.Packages[0].Tests, 1)
	parent := rep.Packages[0].Tests[0]

	c := New(rep)
	f := c.Frame()
	assert.True(t, f.PackageOpen(rep.Packages[0].ID))
	assert.True(t, f.TestOpen(parent.ID))
	assert.True(t, f.SubtestsOpen(parent.ID))

	f = c.SelectStatus(Failed)
	assert.True(t, f.TestVisible(parent.ID))
}
