// Package serve publishes a report over HTTP. Every request loads the
// input again, so a file that is still being written by go test is shown
// as it currently stands.
package serve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"

	"github.com/dkoosis/gotestreport/pkg/render"
	"github.com/dkoosis/gotestreport/pkg/report"
	"github.com/dkoosis/gotestreport/pkg/view"
)

// Loader produces a fresh report for one request.
type Loader func(ctx context.Context) (*report.Report, error)

type handlers struct {
	load Loader
}

// NewRouter returns the report routes:
//
//	GET /             HTML report
//	GET /report.json  JSON snapshot, filtered by ?status= and ?q=
//	GET /healthz      liveness
//
// Both report routes accept the status and q query parameters as the
// initial filter.
func NewRouter(load Loader) http.Handler {
	h := &handlers{load: load}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", h.htmlHandler)
	r.Get("/report.json", h.jsonHandler)
	r.Get("/healthz", healthzHandler)
	return r
}

// Run serves handler on addr until ctx is done.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("report server started", "addr", addr)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen and serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		slog.Info("report server stopped", "addr", addr)
		return nil
	case err := <-errCh:
		return err
	}
}

// frame loads the report and applies the filter from the query string.
func (h *handlers) frame(r *http.Request) (*report.Report, view.Frame, int, error) {
	q := r.URL.Query()
	status, err := view.ParseStatus(q.Get("status"))
	if err != nil {
		return nil, view.Frame{}, http.StatusBadRequest, err
	}

	rep, err := h.load(r.Context())
	if err != nil {
		return nil, view.Frame{}, http.StatusInternalServerError, fmt.Errorf("load report: %w", err)
	}

	ctrl := view.New(rep)
	f := ctrl.Frame()
	filter := view.FilterState{Status: status, Search: q.Get("q")}
	if filter.Active() {
		f = ctrl.SetFilter(filter)
	}
	return rep, f, http.StatusOK, nil
}

func (h *handlers) htmlHandler(w http.ResponseWriter, r *http.Request) {
	rep, f, code, err := h.frame(r)
	if err != nil {
		slog.Error("serve report", "error", err)
		http.Error(w, err.Error(), code)
		return
	}
	var buf bytes.Buffer
	if err := render.NewHTML().Render(&buf, rep, f); err != nil {
		slog.Error("render HTML", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *handlers) jsonHandler(w http.ResponseWriter, r *http.Request) {
	rep, f, code, err := h.frame(r)
	if err != nil {
		slog.Error("serve report", "error", err)
		writeJSON(w, code, map[string]string{"error": err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := render.NewJSON(false).Render(&buf, rep, f); err != nil {
		slog.Error("render JSON", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = buf.WriteTo(w)
}

func healthzHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode JSON response", "error", err)
	}
}
