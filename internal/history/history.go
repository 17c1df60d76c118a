// Package history records a summary of every generated report in a local
// SQLite database so that runs can be compared over time.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dkoosis/gotestreport/pkg/report"
)

// timeLayout has fixed-width fractional seconds so stored timestamps sort
// as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("history: store closed")

// Store is a run history database.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Run is one recorded report.
type Run struct {
	ID        int64         `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Title     string        `json:"title"`
	Packages  int           `json:"packages"`
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration_ns"`
	Malformed int           `json:"malformed,omitempty"`
}

// RunFromReport summarises r.
func RunFromReport(r *report.Report) Run {
	return Run{
		Timestamp: r.Date,
		Title:     r.Title,
		Packages:  len(r.Packages),
		Total:     r.Summary.Total,
		Passed:    r.Summary.Passed,
		Failed:    r.Summary.Failed,
		Skipped:   r.Summary.Skipped,
		Duration:  r.Duration,
		Malformed: r.Malformed,
	}
}

// DefaultPath returns the database location under the XDG data directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "gotestreport", "history.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "gotestreport", "history.db"), nil
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			title TEXT NOT NULL,
			packages INTEGER NOT NULL,
			total INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			malformed INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores run and returns its ID.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, ErrClosed
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(timestamp, title, packages, total, passed, failed, skipped, duration_ms, malformed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Timestamp.UTC().Format(timeLayout),
		run.Title,
		run.Packages,
		run.Total,
		run.Passed,
		run.Failed,
		run.Skipped,
		run.Duration.Milliseconds(),
		run.Malformed,
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, title, packages, total, passed, failed, skipped, duration_ms, malformed
		FROM runs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			ts         string
			durationMS int64
		)
		if err := rows.Scan(&run.ID, &ts, &run.Title, &run.Packages, &run.Total,
			&run.Passed, &run.Failed, &run.Skipped, &durationMS, &run.Malformed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Timestamp, err = time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", ts, err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}
