// Package tui is the interactive terminal viewer: a bubbletea program that
// drives the view controller from key presses and keeps the theme and
// debug preferences in a prefs store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/gotestreport/pkg/prefs"
	"github.com/dkoosis/gotestreport/pkg/render"
	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/view"
)

// Options configures the viewer.
type Options struct {
	Palette    string
	SystemDark bool
	Store      prefs.Store
	Filter     view.FilterState
	// InputTTY reads keys from the controlling terminal, for when stdin
	// carried the report.
	InputTTY bool
	// DetectDark, if set, is asked for the system colour scheme whenever
	// the terminal regains focus.
	DetectDark func() bool
}

// systemThemeMsg carries a re-detected system colour scheme.
type systemThemeMsg struct{ dark bool }

// Run starts the viewer and blocks until the user quits or ctx is done.
func Run(ctx context.Context, r *report.Report, opts Options) error {
	teaOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if opts.InputTTY {
		teaOpts = append(teaOpts, tea.WithInputTTY())
	}
	if opts.DetectDark != nil {
		teaOpts = append(teaOpts, tea.WithReportFocus())
	}
	program := tea.NewProgram(newModel(r, opts), teaOpts...)
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}

// headerLines is the number of lines above the viewport: title, cards,
// search field and filter summary. One status line sits below.
const headerLines = 4

type model struct {
	report *report.Report
	ctrl   *view.Controller
	frame  view.Frame
	rows   []row
	cursor int

	search    textinput.Model
	searching bool
	viewport  viewport.Model

	theme      *prefs.Theme
	debug      *prefs.Debug
	palette    string
	st         styles
	detectDark func() bool

	width, height int
	ready         bool
	status        string
}

func newModel(r *report.Report, opts Options) model {
	store := opts.Store
	if store == nil {
		store = &prefs.MemStore{}
	}
	theme := prefs.NewTheme(store)
	theme.Init(opts.SystemDark)
	debug := prefs.NewDebug(store)
	debug.Init()

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search tests"
	ti.SetValue(opts.Filter.Search)

	ctrl := view.New(r)
	if opts.Filter.Active() {
		ctrl.SetFilter(opts.Filter)
	}

	m := model{
		report:   r,
		ctrl:     ctrl,
		search:   ti,
		viewport: viewport.New(0, 0),
		theme:    theme,
		debug:    debug,
		palette:    opts.Palette,
		st:         compileStyles(opts.Palette, theme.Dark()),
		detectDark: opts.DetectDark,
	}
	m.refresh(ctrl.Frame())
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerLines-1, 1)
		m.search.Width = max(msg.Width-4, 10)
		m.ready = true
		m.redraw()
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKey(msg)
	case tea.FocusMsg:
		if m.detectDark == nil {
			return m, nil
		}
		detect := m.detectDark
		return m, func() tea.Msg { return systemThemeMsg{dark: detect()} }
	case systemThemeMsg:
		if m.theme.SystemChanged(msg.dark) {
			m.st = compileStyles(m.palette, m.theme.Dark())
			m.redraw()
		}
	}
	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.refresh(m.ctrl.SetSearch(""))
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.refresh(m.ctrl.SetSearch(m.search.Value()))
	}
	return m, cmd
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "home", "g":
		m.move(-len(m.rows))
	case "end", "G":
		m.move(len(m.rows))
	case "pgup":
		m.move(-m.viewport.Height)
	case "pgdown":
		m.move(m.viewport.Height)
	case "enter", " ", "space":
		m.toggleAtCursor()
	case "/":
		m.searching = true
		cmd := m.search.Focus()
		m.redraw()
		return m, cmd
	case "esc", "c":
		m.search.SetValue("")
		m.refresh(m.ctrl.ClearFilters())
	case "a":
		m.refresh(m.ctrl.SelectStatus(view.All))
	case "p":
		m.refresh(m.ctrl.SelectStatus(view.Passed))
	case "f":
		m.refresh(m.ctrl.SelectStatus(view.Failed))
	case "s":
		m.refresh(m.ctrl.SelectStatus(view.Skipped))
	case "t":
		if _, err := m.theme.Toggle(); err != nil {
			m.fail("save theme", err)
		}
		m.st = compileStyles(m.palette, m.theme.Dark())
		m.redraw()
	case "d":
		if _, err := m.debug.Toggle(); err != nil {
			m.fail("save debug setting", err)
		}
		m.refresh(m.frame)
	}
	return m, nil
}

func (m *model) fail(what string, err error) {
	slog.Warn("viewer preference not saved", "what", what, "err", err)
	m.status = fmt.Sprintf("could not %s: %v", what, err)
}

func (m *model) move(delta int) {
	m.cursor = min(max(m.cursor+delta, 0), max(len(m.rows)-1, 0))
	m.redraw()
}

func (m *model) toggleAtCursor() {
	if m.cursor >= len(m.rows) {
		return
	}
	rw := m.rows[m.cursor]
	m.refresh(m.ctrl.Toggle(rw.id))
	for i, r := range m.rows {
		if r.id == rw.id && r.kind != rowOutput {
			m.cursor = i
			break
		}
	}
	m.redraw()
}

// refresh rebuilds the rows for a new frame.
func (m *model) refresh(f view.Frame) {
	m.frame = f
	m.rows = buildRows(m.report, f, m.debug.Shown())
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.redraw()
}

func (m *model) redraw() {
	m.viewport.SetContent(m.renderRows())
	if m.viewport.Height > 0 {
		if m.cursor < m.viewport.YOffset {
			m.viewport.SetYOffset(m.cursor)
		} else if m.cursor >= m.viewport.YOffset+m.viewport.Height {
			m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
		}
	}
}

func (m model) renderRows() string {
	if m.frame.NoResults {
		return m.st.Empty.Render("No tests match the current filters.")
	}
	lines := make([]string, len(m.rows))
	for i, r := range m.rows {
		line := m.renderRow(r)
		if i == m.cursor && !m.searching {
			line = m.st.Selected.Width(max(m.width, 1)).Render(plainRow(m, r))
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func (m model) renderRow(r row) string {
	p := m.st.palette
	indent := strings.Repeat("  ", r.depth)
	switch r.kind {
	case rowPackage:
		icon, style := p.StatusStyle(packageStatus(r.pkg))
		return fmt.Sprintf("%s %s %s %s", view.Indicator(r.open), style.Render(icon),
			m.st.Package.Render(r.pkg.Name), m.st.Duration.Render(packageCounts(r.pkg)))
	case rowTest:
		icon, style := p.StatusStyle(string(r.test.Status))
		return fmt.Sprintf("%s%s %s %s %s", indent, toggleGlyph(r), style.Render(icon),
			r.test.DisplayName, m.st.Duration.Render(render.FormatDuration(r.test.Duration)))
	default:
		if r.debug {
			return indent + "  " + m.st.Debug.Render(r.text)
		}
		return indent + "  " + m.st.Output.Render(r.text)
	}
}

// plainRow renders r without colors, for the selection bar.
func plainRow(m model, r row) string {
	indent := strings.Repeat("  ", r.depth)
	p := m.st.palette
	switch r.kind {
	case rowPackage:
		icon, _ := p.StatusStyle(packageStatus(r.pkg))
		return fmt.Sprintf("%s %s %s %s", view.Indicator(r.open), icon, r.pkg.Name, packageCounts(r.pkg))
	case rowTest:
		icon, _ := p.StatusStyle(string(r.test.Status))
		return fmt.Sprintf("%s%s %s %s %s", indent, toggleGlyph(r), icon, r.test.DisplayName,
			render.FormatDuration(r.test.Duration))
	default:
		return indent + "  " + r.text
	}
}

func toggleGlyph(r row) string {
	if !r.hasKid {
		return " "
	}
	return view.Indicator(r.open)
}

func packageStatus(pkg *report.Package) string {
	if pkg.HasFailures() || pkg.BuildError != "" {
		return string(report.Failed)
	}
	return string(report.Passed)
}

func packageCounts(pkg *report.Package) string {
	s := fmt.Sprintf("%d/%d passed  %s", pkg.Summary.Passed, pkg.Summary.Total, render.FormatDuration(pkg.Duration))
	if pkg.Coverage > 0 {
		s += fmt.Sprintf("  %.1f%%", pkg.Coverage)
	}
	return s
}

func (m model) View() string {
	if !m.ready {
		return "Loading report..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.st.Title.Render(m.report.Title),
		m.renderCards(),
		m.search.View(),
		m.st.Filter.Render(m.frame.Summary.String()),
		m.viewport.View(),
		m.renderStatusBar(),
	)
}

func (m model) renderCards() string {
	p := m.st.palette
	s := m.report.Summary
	cards := []struct {
		filter view.StatusFilter
		text   string
		style  lipgloss.Style
	}{
		{view.All, fmt.Sprintf("Total %d", s.Total), p.Primary},
		{view.Passed, fmt.Sprintf("Passed %d", s.Passed), p.Success},
		{view.Failed, fmt.Sprintf("Failed %d", s.Failed), p.Error},
		{view.Skipped, fmt.Sprintf("Skipped %d", s.Skipped), p.Warning},
	}
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		box := m.st.Card
		if m.frame.StatusActive(c.filter) {
			box = m.st.CardOn
		}
		parts = append(parts, box.Inherit(c.style).Render(c.text))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m model) renderStatusBar() string {
	debug := "off"
	if m.debug.Shown() {
		debug = "on"
	}
	bar := fmt.Sprintf("↑/↓ move • enter toggle • / search • a/p/f/s status • c clear • t theme (%s) • d debug (%s) • q quit",
		m.theme.Current(), debug)
	if m.status != "" {
		bar = m.status + "  " + bar
	}
	return m.st.StatusBar.Render(bar)
}
