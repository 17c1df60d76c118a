// gotestreport turns go test -json output into an interactive report.
//
// Usage:
//
//	go test -json ./... | gotestreport -o report.html
//	go test -json ./... | gotestreport --status failed
//	gotestreport view -i tests.json
//	gotestreport serve -i tests.json --addr :8080
//	gotestreport history --limit 10
//
// Output formats for generate (auto-detected):
//
//	html      self-contained page with live filtering (default when -o FILE)
//	terminal  styled Unicode output (default when stdout is a TTY)
//	json      visible items as structured JSON (default when piped)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const usage = `Usage: gotestreport [command] [flags]

Commands:
  generate   render a report from go test -json (default)
  view       browse a report interactively
  serve      serve the report over HTTP
  history    list recorded runs
  version    print version information

Run 'gotestreport <command> -h' for command flags.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := "generate"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd {
	case "generate":
		err = runGenerate(ctx, args, stdin, stdout, stderr)
	case "view":
		err = runView(ctx, args, stdin, stdout, stderr)
	case "serve":
		err = runServe(ctx, args, stdin, stdout, stderr)
	case "history":
		err = runHistory(ctx, args, stdout, stderr)
	case "version":
		err = runVersion(args, stdout)
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprint(stderr, usage)
		err = usageErrorf("unknown command %q", cmd)
	}
	return exitCode(stderr, err)
}

// usageError marks bad flags or unusable input. It maps to exit code 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, a ...any) error {
	return usageError{fmt.Errorf(format, a...)}
}

// errTestsFailed signals a clean run whose report contains failures.
var errTestsFailed = errors.New("tests failed")

// exitCode prints err and returns 0 for success, 2 for usage or input
// errors, 1 otherwise.
func exitCode(stderr io.Writer, err error) int {
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
		return 0
	case errors.Is(err, errTestsFailed):
		return 1
	}
	fmt.Fprintf(stderr, "gotestreport: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

// parseFlags parses args, printing usage on -h. Positional arguments are
// rejected.
func parseFlags(fs *pflag.FlagSet, args []string, stdout io.Writer) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stdout, "Usage of gotestreport %s:\n%s", fs.Name(), fs.FlagUsages())
			return err
		}
		return usageError{err}
	}
	if fs.NArg() > 0 {
		return usageErrorf("unexpected argument %q", fs.Arg(0))
	}
	return nil
}

// initLogging installs the slog text handler on w. The level comes from
// GOTESTREPORT_LOG_LEVEL and is forced to debug by --debug.
func initLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if v := os.Getenv("GOTESTREPORT_LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			fmt.Fprintf(w, "gotestreport: ignoring GOTESTREPORT_LOG_LEVEL %q\n", v)
			level = slog.LevelInfo
		}
	}
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}

// termWidth returns the terminal width for w, defaulting to 80.
func termWidth(w io.Writer) int {
	width, _ := termSize(w)
	return width
}
