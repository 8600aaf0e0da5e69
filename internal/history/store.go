// Package history persists one row per completed solver run in a local
// SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	exit_code  INTEGER NOT NULL,
	verdict    TEXT NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	run_dir    TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Record is one completed run.
type Record struct {
	ID        string
	Input     string
	ExitCode  int
	Verdict   string
	Elapsed   time.Duration
	RunDir    string
	StartedAt time.Time
}

// Store wraps the runs table.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default history database location.
func DefaultPath() string {
	return filepath.Join(".qeforge", "history.db")
}

// Open creates the database (and its parent directory) if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Add inserts a run record.
func (s *Store) Add(r Record) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, input, exit_code, verdict, elapsed_ms, run_dir, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Input, r.ExitCode, r.Verdict, r.Elapsed.Milliseconds(), r.RunDir, r.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the n most recent runs, newest first.
func (s *Store) Recent(n int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, input, exit_code, verdict, elapsed_ms, run_dir, started_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var r Record
		var elapsedMS int64
		if err := rows.Scan(&r.ID, &r.Input, &r.ExitCode, &r.Verdict, &elapsedMS, &r.RunDir, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
