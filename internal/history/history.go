package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/logger"
	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/patch"
	_ "github.com/mattn/go-sqlite3"
)

// ErrDisabled is returned when the journal is requested but no path is configured.
var ErrDisabled = errors.New("history journal is disabled (set history_path or SCRAPERFIX_HISTORY)")

// DB wraps the SQLite journal of patch runs.
type DB struct {
	conn *sql.DB
	path string
}

// Run is one journal entry.
type Run struct {
	ID        int64              `json:"id"`
	RunID     string             `json:"run_id"`
	Path      string             `json:"path"`
	StartedAt time.Time          `json:"started_at"`
	Changed   bool               `json:"changed"`
	Written   bool               `json:"written"`
	BeforeSum string             `json:"before_sha256"`
	AfterSum  string             `json:"after_sha256"`
	Results   []patch.RuleResult `json:"results"`
}

// Matched returns the number of rules that changed the text in this run.
func (r *Run) Matched() int {
	n := 0
	for _, res := range r.Results {
		if res.Matched {
			n++
		}
	}
	return n
}

// Open opens (creating if needed) the journal at path.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, ErrDisabled
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the journal file location.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS patch_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		path TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		changed INTEGER NOT NULL DEFAULT 0,
		written INTEGER NOT NULL DEFAULT 0,
		before_sha256 TEXT NOT NULL,
		after_sha256 TEXT NOT NULL,
		results TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_patch_runs_path ON patch_runs(path);
	CREATE INDEX IF NOT EXISTS idx_patch_runs_started_at ON patch_runs(started_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Record stores a completed patch run. It satisfies patch.Recorder.
func (db *DB) Record(ctx context.Context, report *patch.Report) error {
	results, err := json.Marshal(report.Results)
	if err != nil {
		return fmt.Errorf("failed to encode rule results: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO patch_runs (run_id, path, started_at, changed, written, before_sha256, after_sha256, results)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.Path, report.StartedAt.UTC(), report.Changed, report.Written,
		report.BeforeSum, report.AfterSum, string(results),
	)
	if err != nil {
		return fmt.Errorf("failed to record patch run: %w", err)
	}
	logger.Info("Recorded patch run", "run_id", report.RunID, "journal", db.path)
	return nil
}

// List returns the most recent runs first. A limit of zero or less returns all runs.
func (db *DB) List(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT id, run_id, path, started_at, changed, written, before_sha256, after_sha256, results
	          FROM patch_runs ORDER BY started_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patch runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var results string
		if err := rows.Scan(&run.ID, &run.RunID, &run.Path, &run.StartedAt, &run.Changed, &run.Written,
			&run.BeforeSum, &run.AfterSum, &results); err != nil {
			return nil, fmt.Errorf("failed to scan patch run: %w", err)
		}
		if err := json.Unmarshal([]byte(results), &run.Results); err != nil {
			return nil, fmt.Errorf("failed to decode rule results for run %s: %w", run.RunID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastForPath returns the most recent written run against path, or nil.
func (db *DB) LastForPath(ctx context.Context, path string) (*Run, error) {
	run := &Run{}
	var results string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, run_id, path, started_at, changed, written, before_sha256, after_sha256, results
		 FROM patch_runs WHERE path = ? AND written = 1
		 ORDER BY started_at DESC, id DESC LIMIT 1`,
		path,
	).Scan(&run.ID, &run.RunID, &run.Path, &run.StartedAt, &run.Changed, &run.Written,
		&run.BeforeSum, &run.AfterSum, &results)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last patch run: %w", err)
	}
	if err := json.Unmarshal([]byte(results), &run.Results); err != nil {
		return nil, fmt.Errorf("failed to decode rule results for run %s: %w", run.RunID, err)
	}
	return run, nil
}
