package prefs

// Theme names.
const (
	Light = "light"
	Dark  = "dark"
)

// Theme decides the active colour theme. A stored explicit choice wins over
// the system preference; once the user has chosen, system changes are
// ignored. Values other than light and dark in the store count as unset.
type Theme struct {
	store    Store
	current  string
	explicit bool // chosen this session, stored or not
}

// NewTheme returns a theme controller reading and writing store.
func NewTheme(store Store) *Theme {
	return &Theme{store: store, current: Light}
}

func (t *Theme) stored() (string, bool) {
	v, ok := t.store.Get(KeyTheme)
	if !ok || (v != Light && v != Dark) {
		return "", false
	}
	return v, true
}

// Init picks the theme at startup from the stored choice, else the system
// preference.
func (t *Theme) Init(systemDark bool) string {
	if v, ok := t.stored(); ok {
		t.current = v
		return v
	}
	t.current = fromDark(systemDark)
	return t.current
}

// Current returns the active theme.
func (t *Theme) Current() string { return t.current }

// Dark reports whether the active theme is dark.
func (t *Theme) Dark() bool { return t.current == Dark }

// Toggle switches between light and dark and stores the choice. The new
// theme is applied even when storing fails.
func (t *Theme) Toggle() (string, error) {
	next := Dark
	if t.current == Dark {
		next = Light
	}
	return next, t.Set(next)
}

// Set applies theme as an explicit choice and stores it. Unknown names are
// treated as light.
func (t *Theme) Set(theme string) error {
	if theme != Dark {
		theme = Light
	}
	t.current = theme
	t.explicit = true
	return t.store.Set(KeyTheme, theme)
}

// SystemChanged follows a change of the system colour scheme unless the
// user has made an explicit choice. It reports whether the theme changed.
func (t *Theme) SystemChanged(dark bool) bool {
	if t.explicit {
		return false
	}
	if _, ok := t.stored(); ok {
		return false
	}
	next := fromDark(dark)
	changed := next != t.current
	t.current = next
	return changed
}

func fromDark(dark bool) string {
	if dark {
		return Dark
	}
	return Light
}
