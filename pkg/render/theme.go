package render

import "github.com/charmbracelet/lipgloss"

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Dark    bool
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Debug   lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Pass   string
	Fail   string
	Skip   string
	Info   string
	Bullet string
}

// Palette names.
const (
	PaletteDefault = "default"
	PaletteOrca    = "orca"
	PaletteMono    = "mono"
)

// Palettes lists the palette names.
var Palettes = []string{PaletteDefault, PaletteOrca, PaletteMono}

// shade picks the light- or dark-background variant of a color.
func shade(dark bool, light, darkColor string) lipgloss.Color {
	if dark {
		return lipgloss.Color(darkColor)
	}
	return lipgloss.Color(light)
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme(dark bool) Theme {
	return Theme{
		Name:    PaletteDefault,
		Dark:    dark,
		Primary: lipgloss.NewStyle().Foreground(shade(dark, "25", "39")),   // blue
		Success: lipgloss.NewStyle().Foreground(shade(dark, "28", "34")),   // green
		Warning: lipgloss.NewStyle().Foreground(shade(dark, "166", "214")), // orange
		Error:   lipgloss.NewStyle().Foreground(shade(dark, "160", "196")), // red
		Muted:   lipgloss.NewStyle().Foreground(shade(dark, "244", "242")), // gray
		Bold:    lipgloss.NewStyle().Bold(true),
		Debug:   lipgloss.NewStyle().Foreground(shade(dark, "97", "141")), // violet
		Icons: ThemeIcons{
			Pass:   "✓",
			Fail:   "✗",
			Skip:   "⚠",
			Info:   "●",
			Bullet: "·",
		},
	}
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme(dark bool) Theme {
	return Theme{
		Name:    PaletteOrca,
		Dark:    dark,
		Primary: lipgloss.NewStyle().Foreground(shade(dark, "67", "75")),   // pale blue
		Success: lipgloss.NewStyle().Foreground(shade(dark, "65", "108")),  // sage green
		Warning: lipgloss.NewStyle().Foreground(shade(dark, "136", "179")), // muted gold
		Error:   lipgloss.NewStyle().Foreground(shade(dark, "131", "167")), // muted red
		Muted:   lipgloss.NewStyle().Foreground(shade(dark, "243", "245")), // lighter gray
		Bold:    lipgloss.NewStyle().Bold(true),
		Debug:   lipgloss.NewStyle().Foreground(shade(dark, "96", "140")),
		Icons: ThemeIcons{
			Pass:   "✓",
			Fail:   "✗",
			Skip:   "!",
			Info:   "·",
			Bullet: "·",
		},
	}
}

// MonoTheme returns a monochrome theme (no colors).
func MonoTheme(dark bool) Theme {
	return Theme{
		Name:    PaletteMono,
		Dark:    dark,
		Primary: lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle(),
		Bold:    lipgloss.NewStyle().Bold(true),
		Debug:   lipgloss.NewStyle().Italic(true),
		Icons: ThemeIcons{
			Pass:   "+",
			Fail:   "x",
			Skip:   "-",
			Info:   "*",
			Bullet: "-",
		},
	}
}

// ThemeByName returns a palette by name, defaulting to DefaultTheme.
func ThemeByName(name string, dark bool) Theme {
	switch name {
	case PaletteOrca:
		return OrcaTheme(dark)
	case PaletteMono:
		return MonoTheme(dark)
	default:
		return DefaultTheme(dark)
	}
}

// StatusStyle returns the icon and style for a test status.
func (th Theme) StatusStyle(st string) (string, lipgloss.Style) {
	switch st {
	case "passed", "pass":
		return th.Icons.Pass, th.Success
	case "failed", "fail":
		return th.Icons.Fail, th.Error
	case "skipped", "skip":
		return th.Icons.Skip, th.Warning
	default:
		return th.Icons.Info, th.Muted
	}
}
