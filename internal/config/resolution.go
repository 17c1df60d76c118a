package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
)

// Source names where a resolved value came from.
type Source string

// Sources in priority order, highest first.
const (
	SourceCLI     Source = "cli"
	SourceEnv     Source = "env"
	SourceFile    Source = "file"
	SourceDefault Source = "default"
)

// CliFlags holds the values of command-line flags. Empty strings mean the
// flag was not given.
type CliFlags struct {
	Title       string
	Output      string
	Format      string
	Palette     string
	Addr        string
	History     bool
	HistoryPath string
	PrefsPath   string

	// HistorySet tracks whether --history was explicitly set.
	HistorySet bool
}

// Resolved holds the final configuration after applying all priority rules.
type Resolved struct {
	Title       string
	Output      string
	Format      string
	Palette     string
	Addr        string
	History     bool
	HistoryPath string
	PrefsPath   string

	// ConfigPath is the file that was loaded, if any.
	ConfigPath string

	// Sources maps each key (title, output, format, palette, addr, history,
	// history_path, prefs_path) to the source that set it.
	Sources map[string]Source
}

// Source reports which source set key.
func (r *Resolved) Source(key string) Source {
	if s, ok := r.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Resolve loads the config file and resolves every setting.
func Resolve(flags CliFlags) (*Resolved, error) {
	file, path, err := LoadFile()
	if err != nil {
		return nil, err
	}
	r, err := ResolveWith(flags, file, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	r.ConfigPath = path
	return r, nil
}

// ResolveWith resolves flags over the environment (read via lookup) over
// file over defaults. file may be nil.
func ResolveWith(flags CliFlags, file *FileConfig, lookup func(string) (string, bool)) (*Resolved, error) {
	if file == nil {
		file = &FileConfig{}
	}
	env := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	r := &Resolved{Sources: make(map[string]Source)}

	r.Title = r.pick("title", flags.Title, env("GOTESTREPORT_TITLE"), file.Title, DefaultTitle)
	r.Output = r.pick("output", flags.Output, env("GOTESTREPORT_OUTPUT"), file.Output, DefaultOutput)
	r.Format = r.pick("format", flags.Format, env("GOTESTREPORT_FORMAT"), file.Format, DefaultFormat)

	envPalette := env("GOTESTREPORT_PALETTE")
	if envPalette == "" && env("NO_COLOR") != "" {
		envPalette = "mono"
	}
	r.Palette = r.pick("palette", flags.Palette, envPalette, file.Palette, DefaultPalette)
	r.Addr = r.pick("addr", flags.Addr, "", file.Addr, DefaultAddr)
	r.HistoryPath = r.pick("history_path", flags.HistoryPath, "", file.HistoryPath, "")
	r.PrefsPath = r.pick("prefs_path", flags.PrefsPath, "", file.PrefsPath, "")

	switch {
	case flags.HistorySet:
		r.History = flags.History
		r.Sources["history"] = SourceCLI
	case env("GOTESTREPORT_HISTORY") != "":
		b, err := strconv.ParseBool(env("GOTESTREPORT_HISTORY"))
		if err != nil {
			return nil, fmt.Errorf("invalid GOTESTREPORT_HISTORY %q: %w", env("GOTESTREPORT_HISTORY"), err)
		}
		r.History = b
		r.Sources["history"] = SourceEnv
	case file.History != nil:
		r.History = *file.History
		r.Sources["history"] = SourceFile
	default:
		r.Sources["history"] = SourceDefault
	}

	if err := validate(r); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return r, nil
}

// pick returns the first non-empty value in priority order and records its
// source under key.
func (r *Resolved) pick(key, cli, env, file, def string) string {
	switch {
	case cli != "":
		r.Sources[key] = SourceCLI
		return cli
	case env != "":
		r.Sources[key] = SourceEnv
		return env
	case file != "":
		r.Sources[key] = SourceFile
		return file
	default:
		r.Sources[key] = SourceDefault
		return def
	}
}

func validate(r *Resolved) error {
	if !slices.Contains(Formats, r.Format) {
		return fmt.Errorf("invalid format %q (%s: must be one of %v)", r.Format, r.Source("format"), Formats)
	}
	if !slices.Contains(Palettes, r.Palette) {
		return fmt.Errorf("invalid palette %q (%s: must be one of %v)", r.Palette, r.Source("palette"), Palettes)
	}
	return nil
}
