package prefs

// Debug visibility values.
const (
	Show = "show"
	Hide = "hide"
)

// Debug tracks whether debug blocks in test output are shown.
type Debug struct {
	store Store
	show  bool
}

// NewDebug returns a debug visibility controller reading and writing store.
func NewDebug(store Store) *Debug {
	return &Debug{store: store}
}

// Init restores the stored setting. Anything but "show" hides debug output.
func (d *Debug) Init() bool {
	v, _ := d.store.Get(KeyDebug)
	d.show = v == Show
	return d.show
}

// Shown reports whether debug output is visible.
func (d *Debug) Shown() bool { return d.show }

// Set shows or hides debug output and stores the choice.
func (d *Debug) Set(show bool) error {
	d.show = show
	v := Hide
	if show {
		v = Show
	}
	return d.store.Set(KeyDebug, v)
}

// Toggle flips debug visibility and stores it.
func (d *Debug) Toggle() (bool, error) {
	next := !d.show
	return next, d.Set(next)
}
