package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/gotestreport/pkg/render"
)

// styles holds the lipgloss styles compiled from a render palette for one
// theme (light or dark).
type styles struct {
	palette render.Theme

	Title     lipgloss.Style
	Card      lipgloss.Style
	CardOn    lipgloss.Style
	Package   lipgloss.Style
	Selected  lipgloss.Style
	Filter    lipgloss.Style
	StatusBar lipgloss.Style
	Output    lipgloss.Style
	Debug     lipgloss.Style
	Duration  lipgloss.Style
	Empty     lipgloss.Style
}

func compileStyles(paletteName string, dark bool) styles {
	p := render.ThemeByName(paletteName, dark)

	fg, bg := lipgloss.Color("#1F2328"), lipgloss.Color("#D0D7DE")
	if dark {
		fg, bg = lipgloss.Color("#FAFAFA"), lipgloss.Color("#3B3F51")
	}

	return styles{
		palette: p,
		Title: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Inherit(p.Primary),
		Card: lipgloss.NewStyle().
			Padding(0, 1),
		CardOn: lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Underline(true),
		Package:   lipgloss.NewStyle().Bold(true),
		Selected:  lipgloss.NewStyle().Foreground(fg).Background(bg),
		Filter:    p.Muted,
		StatusBar: p.Muted,
		Output:    p.Muted,
		Debug:     p.Debug,
		Duration:  p.Muted,
		Empty:     p.Muted.Italic(true),
	}
}
