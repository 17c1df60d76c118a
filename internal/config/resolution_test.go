package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestResolveWith_Defaults(t *testing.T) {
	r, err := ResolveWith(CliFlags{}, nil, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, r.Title)
	assert.Equal(t, DefaultOutput, r.Output)
	assert.Equal(t, DefaultFormat, r.Format)
	assert.Equal(t, DefaultPalette, r.Palette)
	assert.Equal(t, DefaultAddr, r.Addr)
	assert.False(t, r.History)
	for _, key := range []string{"title", "output", "format", "palette", "addr", "history", "history_path", "prefs_path"} {
		assert.Equal(t, SourceDefault, r.Source(key), key)
	}
}

func TestResolveWith_PriorityOrder(t *testing.T) {
	yes := true
	file := &FileConfig{Title: "file", Format: "html", Palette: "orca", History: &yes, Addr: ":9000"}

	tests := []struct {
		name        string
		flags       CliFlags
		env         map[string]string
		wantTitle   string
		wantSource  Source
		wantPalette string
		wantHistory bool
	}{
		{
			name:        "file over defaults",
			wantTitle:   "file",
			wantSource:  SourceFile,
			wantPalette: "orca",
			wantHistory: true,
		},
		{
			name:        "env over file",
			env:         map[string]string{"GOTESTREPORT_TITLE": "env", "GOTESTREPORT_HISTORY": "false"},
			wantTitle:   "env",
			wantSource:  SourceEnv,
			wantPalette: "orca",
			wantHistory: false,
		},
		{
			name:        "CLI over env",
			flags:       CliFlags{Title: "cli", Palette: "default", History: true, HistorySet: true},
			env:         map[string]string{"GOTESTREPORT_TITLE": "env", "GOTESTREPORT_HISTORY": "0", "NO_COLOR": "1"},
			wantTitle:   "cli",
			wantSource:  SourceCLI,
			wantPalette: "default",
			wantHistory: true,
		},
		{
			name:        "NO_COLOR selects mono over file palette",
			env:         map[string]string{"NO_COLOR": "1"},
			wantTitle:   "file",
			wantSource:  SourceFile,
			wantPalette: "mono",
			wantHistory: true,
		},
		{
			name:        "GOTESTREPORT_PALETTE beats NO_COLOR",
			env:         map[string]string{"NO_COLOR": "1", "GOTESTREPORT_PALETTE": "orca"},
			wantTitle:   "file",
			wantSource:  SourceFile,
			wantPalette: "orca",
			wantHistory: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ResolveWith(tt.flags, file, envMap(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, r.Title)
			assert.Equal(t, tt.wantSource, r.Source("title"))
			assert.Equal(t, tt.wantPalette, r.Palette)
			assert.Equal(t, tt.wantHistory, r.History)
			assert.Equal(t, "html", r.Format)
			assert.Equal(t, ":9000", r.Addr)
		})
	}
}

func TestResolveWith_Validation(t *testing.T) {
	tests := []struct {
		name  string
		flags CliFlags
		env   map[string]string
		file  *FileConfig
		want  string
	}{
		{name: "bad format flag", flags: CliFlags{Format: "pdf"}, want: `invalid format "pdf" (cli`},
		{name: "bad palette in file", file: &FileConfig{Palette: "neon"}, want: `invalid palette "neon" (file`},
		{name: "bad history env", env: map[string]string{"GOTESTREPORT_HISTORY": "maybe"}, want: "GOTESTREPORT_HISTORY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWith(tt.flags, tt.file, envMap(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolve_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, FileName, "title: from yaml\nformat: json\n")
	t.Setenv("GOTESTREPORT_TITLE", "")
	t.Setenv("GOTESTREPORT_FORMAT", "")

	r, err := Resolve(CliFlags{})
	require.NoError(t, err)
	assert.Equal(t, FileName, r.ConfigPath)
	assert.Equal(t, "from yaml", r.Title)
	assert.Equal(t, "json", r.Format)
	assert.Equal(t, SourceFile, r.Source("format"))
}
