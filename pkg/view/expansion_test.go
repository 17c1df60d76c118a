package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndicator(t *testing.T) {
	assert.Equal(t, "▾", Indicator(true))
	assert.Equal(t, "▸", Indicator(false))
}

func TestExpansion_TogglePackage(t *testing.T) {
	e := NewExpansion(fixtureReport())
	assert.False(t, e.PackageOpen("pkgA"))

	e.TogglePackage("pkgA")
	assert.True(t, e.PackageOpen("pkgA"))
	e.TogglePackage("pkgA")
	assert.False(t, e.PackageOpen("pkgA"))
}

func TestExpansion_ToggleTestWithSubtests(t *testing.T) {
	e := NewExpansion(fixtureReport())

	e.ToggleTest("other")
	assert.True(t, e.TestOpen("other"))
	assert.True(t, e.OutputOpen("other"))
	assert.True(t, e.SubtestsOpen("other"))

	e.ToggleTest("other")
	assert.False(t, e.TestOpen("other"))
	assert.False(t, e.OutputOpen("other"))
	assert.False(t, e.SubtestsOpen("other"))
}

func TestExpansion_ToggleTestFlipsFlagsIndependently(t *testing.T) {
	e := NewExpansion(fixtureReport())

	// Reveal opens the test and subtests but not the output, so the next
	// toggle leaves the panels out of step.
	e.RevealSubtests("other")
	e.ToggleTest("other")

	assert.False(t, e.TestOpen("other"))
	assert.True(t, e.OutputOpen("other"))
	assert.False(t, e.SubtestsOpen("other"))
}

func TestExpansion_ToggleOutputOnlyForLeaves(t *testing.T) {
	e := NewExpansion(fixtureReport())

	e.ToggleOutput("B")
	assert.True(t, e.OutputOpen("B"))
	assert.False(t, e.TestOpen("B"))

	e.ToggleOutput("other")
	assert.False(t, e.OutputOpen("other"), "tests with subtests use ToggleTest")
}

func TestExpansion_OpenFailures(t *testing.T) {
	e := NewExpansion(fixtureReport())
	e.OpenFailures()

	assert.True(t, e.PackageOpen("pkgA"))
	assert.True(t, e.TestOpen("B"))
	assert.True(t, e.OutputOpen("B"))
	assert.False(t, e.TestOpen("A"))
	assert.False(t, e.PackageOpen("pkgB"))
}

func TestExpansion_UnknownIDsIgnored(t *testing.T) {
	e := NewExpansion(fixtureReport())

	e.TogglePackage("nope")
	e.ToggleTest("nope")
	e.ToggleOutput("nope")
	e.OpenPackage("nope")
	e.RevealSubtests("nope")

	assert.Empty(t, e.packages)
	assert.Empty(t, e.tests)
	assert.Empty(t, e.outputs)
	assert.Empty(t, e.subtests)
}
