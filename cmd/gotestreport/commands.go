package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	json "github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"github.com/dkoosis/gotestreport/internal/config"
	"github.com/dkoosis/gotestreport/internal/history"
	"github.com/dkoosis/gotestreport/internal/serve"
	"github.com/dkoosis/gotestreport/internal/version"
	"github.com/dkoosis/gotestreport/pkg/prefs"
	"github.com/dkoosis/gotestreport/pkg/render"
	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/tui"
)

func runView(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("view", pflag.ContinueOnError)
	var (
		common commonFlags
		ff     filterFlags
	)
	common.register(fs)
	ff.register(fs)
	prefsFile := fs.String("prefs", "", "theme and debug preferences `PATH`")
	if err := parseFlags(fs, args, stdout); err != nil {
		return err
	}
	initLogging(stderr, common.debug)

	cfg, err := config.Resolve(config.CliFlags{
		Title:     common.title,
		Palette:   ff.palette,
		PrefsPath: *prefsFile,
	})
	if err != nil {
		return usageError{err}
	}
	filter, err := ff.filter()
	if err != nil {
		return err
	}
	if !isTTYWriter(stdout) {
		return usageErrorf("view needs a terminal; use generate for files and pipes")
	}

	rep, err := readReport(ctx, source{path: common.input, stdin: stdin, palette: cfg.Palette}, cfg.Title, stderr)
	if err != nil {
		return err
	}
	return tui.Run(ctx, rep, tui.Options{
		Palette:    cfg.Palette,
		SystemDark: lipgloss.HasDarkBackground(),
		Store:      prefs.OpenFile(prefsPath(cfg.PrefsPath)),
		Filter:     filter,
		InputTTY:   common.input == "",
		DetectDark: lipgloss.HasDarkBackground,
	})
}

func runServe(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", "", "listen on `ADDR` (default "+config.DefaultAddr+")")
	if err := parseFlags(fs, args, stdout); err != nil {
		return err
	}
	initLogging(stderr, common.debug)

	cfg, err := config.Resolve(config.CliFlags{Title: common.title, Addr: *addr})
	if err != nil {
		return usageError{err}
	}

	var load serve.Loader
	if common.input == "" {
		// stdin can only be read once; each request reparses the bytes.
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		load = func(ctx context.Context) (*report.Report, error) {
			return parseReport(ctx, bytes.NewReader(data), "stdin", cfg.Title, io.Discard, nil)
		}
	} else {
		src := source{path: common.input}
		load = func(ctx context.Context) (*report.Report, error) {
			return readReport(ctx, src, cfg.Title, io.Discard)
		}
	}
	if _, err := load(ctx); err != nil {
		return err
	}
	return serve.Run(ctx, cfg.Addr, serve.NewRouter(load))
}

func runHistory(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	limit := fs.Int("limit", 20, "show at most `N` runs (0 for all)")
	db := fs.String("db", "", "history database `PATH`")
	asJSON := fs.Bool("json", false, "print runs as JSON")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := parseFlags(fs, args, stdout); err != nil {
		return err
	}
	initLogging(stderr, *debug)

	cfg, err := config.Resolve(config.CliFlags{HistoryPath: *db})
	if err != nil {
		return usageError{err}
	}
	path, err := historyPath(cfg.HistoryPath)
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(ctx, *limit)
	if err != nil {
		return err
	}

	if *asJSON {
		if runs == nil {
			runs = []history.Run{}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No runs recorded.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "WHEN", "TITLE", "TOTAL", "PASSED", "FAILED", "SKIPPED", "DURATION")
	for _, run := range runs {
		t.Row(
			strconv.FormatInt(run.ID, 10),
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Title,
			strconv.Itoa(run.Total),
			strconv.Itoa(run.Passed),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Skipped),
			render.FormatDuration(run.Duration),
		)
	}
	fmt.Fprintln(stdout, t.Render())
	return nil
}

func runVersion(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("version", pflag.ContinueOnError)
	if err := parseFlags(fs, args, stdout); err != nil {
		return err
	}
	fmt.Fprintln(stdout, version.String())
	return nil
}
