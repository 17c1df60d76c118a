package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTheme_InitOrder(t *testing.T) {
	tests := []struct {
		name       string
		stored     string
		systemDark bool
		want       string
	}{
		{"nothing stored, light system", "", false, Light},
		{"nothing stored, dark system", "", true, Dark},
		{"stored light beats dark system", Light, true, Light},
		{"stored dark beats light system", Dark, false, Dark},
		{"invalid stored value is unset", "purple", true, Dark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MemStore{}
			if tt.stored != "" {
				require.NoError(t, store.Set(KeyTheme, tt.stored))
			}
			th := NewTheme(store)
			assert.Equal(t, tt.want, th.Init(tt.systemDark))
			assert.Equal(t, tt.want, th.Current())
		})
	}
}

func TestTheme_SystemChangesIgnoredAfterExplicitChoice(t *testing.T) {
	store := &MemStore{}
	th := NewTheme(store)
	th.Init(true)
	require.Equal(t, Dark, th.Current())

	next, err := th.Toggle()
	require.NoError(t, err)
	assert.Equal(t, Light, next)
	v, _ := store.Get(KeyTheme)
	assert.Equal(t, Light, v)

	assert.False(t, th.SystemChanged(true))
	assert.Equal(t, Light, th.Current())
}

func TestTheme_ChoiceHoldsWhenStoreFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	th := NewTheme(OpenFile(filepath.Join(blocker, "prefs.yaml")))
	th.Init(false)
	require.Error(t, th.Set(Light))

	assert.False(t, th.SystemChanged(true))
	assert.Equal(t, Light, th.Current())
}

func TestTheme_FollowsSystemWithoutChoice(t *testing.T) {
	th := NewTheme(&MemStore{})
	th.Init(false)

	assert.True(t, th.SystemChanged(true))
	assert.True(t, th.Dark())
	assert.False(t, th.SystemChanged(true), "no change")
	assert.True(t, th.SystemChanged(false))
	assert.Equal(t, Light, th.Current())
}

func TestTheme_SetUnknownIsLight(t *testing.T) {
	store := &MemStore{}
	th := NewTheme(store)
	require.NoError(t, th.Set("sepia"))
	assert.Equal(t, Light, th.Current())
}

func TestDebug_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "prefs.yaml")

	d := NewDebug(OpenFile(path))
	assert.False(t, d.Init())
	shown, err := d.Toggle()
	require.NoError(t, err)
	assert.True(t, shown)

	reloaded := NewDebug(OpenFile(path))
	assert.True(t, reloaded.Init())

	require.NoError(t, reloaded.Set(false))
	assert.False(t, NewDebug(OpenFile(path)).Init())
}

func TestTheme_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")

	th := NewTheme(OpenFile(path))
	th.Init(false)
	require.NoError(t, th.Set(Dark))

	assert.Equal(t, Dark, NewTheme(OpenFile(path)).Init(false))
}

func TestOpenFile_MissingAndInvalid(t *testing.T) {
	dir := t.TempDir()

	s := OpenFile(filepath.Join(dir, "missing.yaml"))
	_, ok := s.Get(KeyTheme)
	assert.False(t, ok)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- not\n- a map\n"), 0o644))
	s = OpenFile(bad)
	_, ok = s.Get(KeyTheme)
	assert.False(t, ok)
	require.NoError(t, s.Set(KeyTheme, Dark))

	data, err := os.ReadFile(bad)
	require.NoError(t, err)
	assert.Contains(t, string(data), "theme: dark")
}

func TestFileStore_SetFailureKeepsOldValue(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// The parent "directory" is a regular file, so the write must fail.
	s := OpenFile(filepath.Join(blocker, "prefs.yaml"))
	assert.Error(t, s.Set(KeyDebug, Show))
	_, ok := s.Get(KeyDebug)
	assert.False(t, ok)
}

func TestStateDir_UsesXDG(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	assert.Equal(t, filepath.Join("/tmp/xdg-state", "gotestreport"), StateDir())
	assert.Equal(t, filepath.Join("/tmp/xdg-state", "gotestreport", "prefs.yaml"), DefaultPath())
}
