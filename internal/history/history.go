// Package history persists build outcomes to a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"blogbuilder/internal/render"
)

// Entry is one recorded build.
type Entry struct {
	BuildID   string
	Started   time.Time
	Finished  time.Time
	Outcome   render.Outcome
	Published int
	Drafts    int
	Pages     int
	Duration  time.Duration
}

// Store records builds in SQLite. Use ":memory:" as the path for tests.
type Store struct {
	db *sql.DB
}

// Open creates the database (and its parent directory) when missing.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		published INTEGER NOT NULL,
		drafts INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a finished build report.
func (s *Store) Record(ctx context.Context, report *render.BuildReport) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, started, finished, outcome, published, drafts, pages, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.BuildID,
		report.Start.UnixMilli(),
		report.End.UnixMilli(),
		string(report.Outcome),
		report.Published,
		report.Drafts,
		report.Pages,
		report.Duration().Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record build: %w", err)
	}
	return nil
}

// Recent returns the most recent builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started, finished, outcome, published, drafts, pages, duration_ms
		 FROM builds ORDER BY started DESC, build_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, finished, durationMS int64
		var outcome string
		if err := rows.Scan(&e.BuildID, &started, &finished, &outcome, &e.Published, &e.Drafts, &e.Pages, &durationMS); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		e.Started = time.UnixMilli(started)
		e.Finished = time.UnixMilli(finished)
		e.Outcome = render.Outcome(outcome)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
