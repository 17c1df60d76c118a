// Package prefs holds the two durable viewer preferences, the colour theme
// and debug-output visibility, together with the stores that persist them.
//
// The HTML report keeps the same keys in browser localStorage; the
// terminal viewer uses a YAML file under the XDG state directory:
//
//	$XDG_STATE_HOME/gotestreport/prefs.yaml   (default ~/.local/state/...)
package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Preference keys.
const (
	KeyTheme = "theme"
	KeyDebug = "debug"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Store is a string key/value store for preferences.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MemStore is an in-memory Store. The zero value is ready to use.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

// Get returns the stored value for key.
func (m *MemStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key.
func (m *MemStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

// FileStore is a Store backed by a YAML file. Every Set rewrites the file
// atomically.
type FileStore struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// StateDir returns the XDG state directory for gotestreport.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "gotestreport")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "gotestreport")
}

// DefaultPath returns the default location of the prefs file.
func DefaultPath() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "prefs.yaml")
}

// OpenFile loads the prefs file at path. A missing or unreadable file
// yields an empty store; the file is created on the first Set.
func OpenFile(path string) *FileStore {
	s := &FileStore{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("prefs file unreadable, starting empty", "path", path, "err", err)
		}
		return s
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		slog.Debug("prefs file invalid, starting empty", "path", path, "err", err)
		s.values = make(map[string]string)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Get returns the stored value for key.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and writes the file.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.save(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) save() error {
	if s.path == "" {
		return errors.New("prefs: no file path")
	}
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerms); err != nil {
		return fmt.Errorf("create prefs directory: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	// atomic.WriteFile leaves new files with the temp file's mode.
	if err := os.Chmod(s.path, filePerms); err != nil {
		return fmt.Errorf("chmod prefs: %w", err)
	}
	return nil
}
