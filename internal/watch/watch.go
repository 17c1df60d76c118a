// Package watch reports changes to a single file, coalescing bursts of
// events into one notification.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must stay quiet before a change is
// reported.
const DefaultDebounce = 200 * time.Millisecond

// ErrFileRemoved is passed to the error callback when the watched file is
// removed. Watching continues so the file can be recreated.
var ErrFileRemoved = errors.New("watched file was removed")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithOnError sets the callback invoked on watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher monitors one file. It watches the containing directory so that
// atomic replace-by-rename writes are seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onError  func(error)
	fs       *fsnotify.Watcher
}

// New starts watching path. Events that happen before Run is called are
// buffered by fsnotify.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     absPath,
		debounce: DefaultDebounce,
		onError:  func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}
	w.fs = fsw
	return w, nil
}

// Path returns the watched file path.
func (w *Watcher) Path() string { return w.path }

// Run calls onChange on the calling goroutine after each debounced burst
// of writes to the file. It returns nil when ctx is done and closes the
// watcher.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.fs.Close()

	target := filepath.Base(w.path)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				timer.Reset(w.debounce)
				pending = true
			}

		case <-timer.C:
			if pending {
				pending = false
				onChange()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.onError(err)
		}
	}
}
