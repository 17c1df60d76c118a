package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/natefinch/atomic"
	"github.com/spf13/pflag"

	"github.com/dkoosis/gotestreport/internal/config"
	"github.com/dkoosis/gotestreport/internal/history"
	"github.com/dkoosis/gotestreport/internal/watch"
	"github.com/dkoosis/gotestreport/pkg/prefs"
	"github.com/dkoosis/gotestreport/pkg/render"
	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/view"
)

func runGenerate(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	var (
		common commonFlags
		ff     filterFlags
	)
	common.register(fs)
	ff.register(fs)
	output := fs.StringP("output", "o", "", "write the report to `FILE` (- for stdout)")
	format := fs.String("format", "", "output format: auto, html, terminal, json")
	watchInput := fs.Bool("watch", false, "regenerate the report whenever the input file changes")
	record := fs.Bool("history", false, "record the run in the history database")
	if err := parseFlags(fs, args, stdout); err != nil {
		return err
	}
	initLogging(stderr, common.debug)

	cfg, err := config.Resolve(config.CliFlags{
		Title:      common.title,
		Output:     *output,
		Format:     *format,
		Palette:    ff.palette,
		History:    *record,
		HistorySet: fs.Changed("history"),
	})
	if err != nil {
		return usageError{err}
	}
	filter, err := ff.filter()
	if err != nil {
		return err
	}

	g := &generator{
		cfg:    cfg,
		src:    source{path: common.input, stdin: stdin, palette: cfg.Palette},
		filter: filter,
		format: resolveFormat(cfg.Format, cfg.Output, stdout),
		stdout: stdout,
		stderr: stderr,
	}
	slog.Debug("generate", "input", g.src.name(), "output", cfg.Output, "format", g.format,
		"config", cfg.ConfigPath)

	if *watchInput {
		if common.input == "" {
			return usageErrorf("--watch requires --input FILE")
		}
		return g.watch(ctx)
	}

	failed, err := g.generate(ctx)
	if err != nil {
		return err
	}
	if failed && g.format != "html" {
		return errTestsFailed
	}
	return nil
}

// resolveFormat picks the concrete format for auto: HTML when writing to
// a file, terminal on a TTY, JSON otherwise.
func resolveFormat(format, output string, stdout io.Writer) string {
	if format != "auto" {
		return format
	}
	switch {
	case !isStdout(output):
		return "html"
	case isTTYWriter(stdout):
		return "terminal"
	default:
		return "json"
	}
}

func isStdout(output string) bool { return output == "" || output == "-" }

type generator struct {
	cfg    *config.Resolved
	src    source
	filter view.FilterState
	format string
	stdout io.Writer
	stderr io.Writer
}

// generate renders one report and reports whether it contains failures.
func (g *generator) generate(ctx context.Context) (bool, error) {
	rep, err := readReport(ctx, g.src, g.cfg.Title, g.stderr)
	if err != nil {
		return false, err
	}

	var buf bytes.Buffer
	if err := g.renderer().Render(&buf, rep, initialFrame(rep, g.filter)); err != nil {
		return false, fmt.Errorf("render %s: %w", g.format, err)
	}
	if err := writeOutput(g.cfg.Output, &buf, g.stdout); err != nil {
		return false, err
	}
	slog.Debug("report written", "output", g.cfg.Output, "packages", len(rep.Packages),
		"tests", rep.Summary.Total)

	if g.cfg.History {
		g.record(ctx, rep)
	}
	return rep.HasFailures(), nil
}

func (g *generator) renderer() render.Renderer {
	switch g.format {
	case "html":
		return render.NewHTML()
	case "json":
		return render.NewJSON(true)
	default:
		store := prefs.OpenFile(prefsPath(g.cfg.PrefsPath))
		theme := prefs.NewTheme(store)
		theme.Init(isTTYWriter(g.stdout) && lipgloss.HasDarkBackground())
		debug := prefs.NewDebug(store)
		debug.Init()
		return render.NewTerminal(render.ThemeByName(g.cfg.Palette, theme.Dark()), termWidth(g.stdout), debug.Shown())
	}
}

// record stores a summary of rep. Failures are warnings.
func (g *generator) record(ctx context.Context, rep *report.Report) {
	if err := recordRun(ctx, g.cfg.HistoryPath, rep); err != nil {
		slog.Warn("history not recorded", "error", err)
		fmt.Fprintf(g.stderr, "gotestreport: warning: history not recorded: %v\n", err)
	}
}

func recordRun(ctx context.Context, configured string, rep *report.Report) error {
	path, err := historyPath(configured)
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Record(ctx, history.RunFromReport(rep))
	if err != nil {
		return err
	}
	slog.Debug("run recorded", "id", id, "db", path)
	return nil
}

// watch regenerates the report after every change to the input file until
// ctx is done. Errors are logged and the watch continues.
func (g *generator) watch(ctx context.Context) error {
	w, err := watch.New(g.src.path, watch.WithOnError(func(err error) {
		slog.Warn("watch", "input", g.src.path, "error", err)
	}))
	if err != nil {
		return fmt.Errorf("watch input: %w", err)
	}

	regenerate := func() {
		if _, err := g.generate(ctx); err != nil {
			slog.Error("regenerate report", "input", g.src.path, "error", err)
			return
		}
		slog.Info("report regenerated", "input", g.src.path, "output", g.cfg.Output)
	}
	regenerate()
	slog.Info("watching for changes", "input", g.src.path)
	return w.Run(ctx, regenerate)
}

// writeOutput writes buf to stdout, or atomically replaces the file at
// path.
func writeOutput(path string, buf *bytes.Buffer, stdout io.Writer) error {
	if isStdout(path) {
		_, err := buf.WriteTo(stdout)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := atomic.WriteFile(path, buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func prefsPath(configured string) string {
	if configured != "" {
		return configured
	}
	return prefs.DefaultPath()
}

func historyPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return history.DefaultPath()
}
