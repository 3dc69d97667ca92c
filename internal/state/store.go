// Package state persists run history so the daemon and CLI can report what
// was built, analyzed, and uploaded across restarts.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded pipeline run (build, analyze, or upload).
type Run struct {
	ID         string            `json:"id"`
	RunType    string            `json:"run_type"`
	Outcome    string            `json:"outcome"`
	Source     string            `json:"source,omitempty"`
	Races      int               `json:"races,omitempty"`
	DurationMS int64             `json:"duration_ms"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Detail     map[string]string `json:"detail,omitempty"`
}

// Store keeps run history in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (or creates) the run-history database. Use ":memory:" for an
// in-memory store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		run_type TEXT NOT NULL,
		outcome TEXT NOT NULL,
		source TEXT,
		races INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		detail TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_type ON runs(run_type);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts one finished run.
func (s *Store) Record(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var detailJSON []byte
	if run.Detail != nil {
		var err error
		detailJSON, err = json.Marshal(run.Detail)
		if err != nil {
			return fmt.Errorf("marshal run detail: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, run_type, outcome, source, races, duration_ms, started_at, finished_at, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RunType, run.Outcome, run.Source, run.Races, run.DurationMS,
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), detailJSON,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_type, outcome, source, races, duration_ms, started_at, finished_at, detail
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// ByType returns the most recent runs of one type, newest first.
func (s *Store) ByType(ctx context.Context, runType string, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_type, outcome, source, races, duration_ms, started_at, finished_at, detail
		 FROM runs WHERE run_type = ? ORDER BY started_at DESC, id DESC LIMIT ?`, runType, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// LastBySource returns the latest run that processed source, or nil.
func (s *Store) LastBySource(ctx context.Context, source string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_type, outcome, source, races, duration_ms, started_at, finished_at, detail
		 FROM runs WHERE source = ? ORDER BY started_at DESC, id DESC LIMIT 1`, source)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// OutcomeCounts tallies recorded outcomes per run type.
func (s *Store) OutcomeCounts(ctx context.Context) (map[string]map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_type, outcome, COUNT(*) FROM runs GROUP BY run_type, outcome`)
	if err != nil {
		return nil, fmt.Errorf("query outcome counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]map[string]int)
	for rows.Next() {
		var runType, outcome string
		var n int
		if err := rows.Scan(&runType, &outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		if counts[runType] == nil {
			counts[runType] = make(map[string]int)
		}
		counts[runType][outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return counts, nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var r Run
		var source sql.NullString
		var startedMilli, finishedMilli int64
		var detailJSON []byte

		err := rows.Scan(&r.ID, &r.RunType, &r.Outcome, &source, &r.Races,
			&r.DurationMS, &startedMilli, &finishedMilli, &detailJSON)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		r.Source = source.String
		r.StartedAt = time.UnixMilli(startedMilli)
		r.FinishedAt = time.UnixMilli(finishedMilli)

		if len(detailJSON) > 0 {
			if err := json.Unmarshal(detailJSON, &r.Detail); err != nil {
				return nil, fmt.Errorf("unmarshal run detail: %w", err)
			}
		}

		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return runs, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
