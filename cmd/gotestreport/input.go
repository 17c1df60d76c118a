package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/dkoosis/gotestreport/internal/detect"
	"github.com/dkoosis/gotestreport/pkg/progress"
	"github.com/dkoosis/gotestreport/pkg/render"
	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/testjson"
	"github.com/dkoosis/gotestreport/pkg/view"
)

// commonFlags are shared by the report commands.
type commonFlags struct {
	input string
	title string
	debug bool
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.input, "input", "i", "", "read go test -json from `FILE` instead of stdin")
	fs.StringVar(&c.title, "title", "", "report title")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging")
}

// filterFlags set the initial filter.
type filterFlags struct {
	status  string
	search  string
	palette string
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.status, "status", "", "show only `STATUS` tests: all, passed, failed, skipped")
	fs.StringVar(&f.search, "search", "", "show only tests whose name contains `TEXT`")
	fs.StringVar(&f.palette, "palette", "", "terminal palette: default, orca, mono")
}

func (f *filterFlags) filter() (view.FilterState, error) {
	st, err := view.ParseStatus(f.status)
	if err != nil {
		return view.FilterState{}, usageError{err}
	}
	state := view.FilterState{Status: st}
	state.SetSearch(f.search)
	return state, nil
}

// source is where the go test -json stream comes from.
type source struct {
	path    string // empty means stdin
	stdin   io.Reader
	palette string // for the progress display
}

func (s source) name() string {
	if s.path == "" {
		return "stdin"
	}
	return s.path
}

// readReport reads and parses the whole input.
func readReport(ctx context.Context, src source, title string, stderr io.Writer) (*report.Report, error) {
	r := src.stdin
	if src.path != "" {
		f, err := os.Open(src.path)
		if err != nil {
			return nil, usageErrorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	} else if c, ok := src.stdin.(io.Closer); ok {
		// Stream cannot close through the bufio.Reader, so unblock it here.
		stopClose := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stopClose()
	}

	var observe testjson.ProcessFunc
	if src.path == "" && isTTYWriter(stderr) {
		width, height := termSize(stderr)
		tracker := progress.New(stderr, width, height, render.ThemeByName(src.palette, true))
		defer tracker.Finish()
		observe = tracker.Observe
	}
	return parseReport(ctx, r, src.name(), title, stderr, observe)
}

// parseReport sniffs r and parses it as go test -json. Other input is a
// usage error. observe, if set, sees every event as it is read.
func parseReport(ctx context.Context, r io.Reader, name, title string, stderr io.Writer, observe testjson.ProcessFunc) (*report.Report, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	peeked, _ := br.Peek(detect.SniffSize)
	if len(bytes.TrimSpace(peeked)) == 0 {
		return nil, usageErrorf("no input on %s", name)
	}
	switch detect.Sniff(peeked) {
	case detect.GoTestJSON:
	case detect.GoTestText:
		return nil, usageErrorf("%s: got plain go test output, rerun with go test -json", name)
	default:
		return nil, usageErrorf("%s: unrecognized input format (expected go test -json)", name)
	}

	results, malformed, err := testjson.ParseWith(ctx, br, observe)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if malformed > 0 {
		fmt.Fprintf(stderr, "gotestreport: warning: %d malformed line(s) skipped\n", malformed)
	}

	rep := report.New(title, time.Now(), results)
	rep.Malformed = malformed
	slog.Debug("report parsed", "input", name, "packages", len(rep.Packages),
		"tests", rep.Summary.Total, "malformed", malformed)
	return rep, nil
}

// initialFrame applies filter to a fresh controller for rep.
func initialFrame(rep *report.Report, filter view.FilterState) view.Frame {
	ctrl := view.New(rep)
	if filter.Active() {
		return ctrl.SetFilter(filter)
	}
	return ctrl.Frame()
}
