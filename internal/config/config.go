package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project-local config file name.
const FileName = ".gotestreport.yaml"

// FileConfig mirrors the YAML config file. Pointer fields distinguish an
// absent key from a zero value.
type FileConfig struct {
	Title       string `yaml:"title,omitempty"`
	Output      string `yaml:"output,omitempty"`
	Format      string `yaml:"format,omitempty"`
	Palette     string `yaml:"palette,omitempty"`
	Addr        string `yaml:"addr,omitempty"`
	History     *bool  `yaml:"history,omitempty"`
	HistoryPath string `yaml:"history_path,omitempty"`
	PrefsPath   string `yaml:"prefs_path,omitempty"`
}

// Constants for default values.
const (
	DefaultTitle   = "Go Test Report"
	DefaultOutput  = "-"
	DefaultFormat  = "auto"
	DefaultPalette = "default"
	DefaultAddr    = ":8080"
)

// Formats lists the accepted values of the format setting.
var Formats = []string{"auto", "html", "terminal", "json"}

// Palettes lists the accepted values of the palette setting.
var Palettes = []string{"default", "orca", "mono"}

// LoadFile loads the first config file found by configPath. A missing file
// yields an empty config and an empty path.
func LoadFile() (*FileConfig, string, error) {
	path := configPath()
	if path == "" {
		return &FileConfig{}, "", nil
	}
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// ReadFile parses the config file at path.
func ReadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// configPath tries to find the config file.
// It checks the working directory first, then the XDG config directory.
func configPath() string {
	if _, err := os.Stat(FileName); err == nil {
		slog.Debug("using local config file", "path", FileName)
		return FileName
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		slog.Debug("user config dir unavailable", "error", err)
		return ""
	}
	xdgPath := filepath.Join(configHome, "gotestreport", "config.yaml")
	if _, err := os.Stat(xdgPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("stat config file", "path", xdgPath, "error", err)
		}
		return ""
	}
	slog.Debug("using XDG config file", "path", xdgPath)
	return xdgPath
}
