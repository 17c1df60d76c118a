package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestConfigPath_ReturnsLocalConfig_When_FileExists(t *testing.T) {
	tempDir := t.TempDir()
	chdir(t, tempDir)
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, FileName), []byte("title: local\n"), 0o600))

	assert.Equal(t, FileName, configPath())

	cfg, path, err := LoadFile()
	require.NoError(t, err)
	assert.Equal(t, FileName, path)
	assert.Equal(t, "local", cfg.Title)
}

func TestConfigPath_UsesXDGPath_When_LocalMissing(t *testing.T) {
	tempDir := t.TempDir()
	chdir(t, tempDir)

	xdgRoot := filepath.Join(tempDir, "xdg")
	dir := filepath.Join(xdgRoot, "gotestreport")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	want := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(want, []byte("palette: orca\nhistory: true\n"), 0o600))

	t.Setenv("XDG_CONFIG_HOME", xdgRoot)
	t.Setenv("HOME", filepath.Join(tempDir, "home"))

	assert.Equal(t, want, configPath())

	cfg, _, err := LoadFile()
	require.NoError(t, err)
	assert.Equal(t, "orca", cfg.Palette)
	require.NotNil(t, cfg.History)
	assert.True(t, *cfg.History)
}

func TestLoadFile_NoConfig(t *testing.T) {
	tempDir := t.TempDir()
	chdir(t, tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "empty"))

	cfg, path, err := LoadFile()
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, &FileConfig{}, cfg)
}

func TestReadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: [unterminated\n"), 0o600))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
