package database

import (
	"database/sql"
	"fmt"

	"vshield-go/internal/database/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the run-history database at path and
// brings its schema up to date. path can be ":memory:" for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating run history database: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs the store relies on.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite ships with foreign keys off for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) RecordRun(run *Run) error {
	const q = `
INSERT INTO runs (
    id, started_at, finished_at, method, source_root, target_root, status,
    total_found, succeeded, copied_only, failed, skipped
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(q,
		run.ID,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
		run.Method,
		run.SourceRoot,
		run.TargetRoot,
		run.Status,
		run.TotalFound,
		run.Succeeded,
		run.CopiedOnly,
		run.Failed,
		run.Skipped,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentRuns(limit int) ([]*Run, error) {
	const q = `
SELECT id, started_at, finished_at, method, source_root, target_root, status,
       total_found, succeeded, copied_only, failed, skipped
FROM runs
ORDER BY started_at DESC
LIMIT ?`

	rows, err := s.db.Query(q, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID,
			&r.StartedAt,
			&r.FinishedAt,
			&r.Method,
			&r.SourceRoot,
			&r.TargetRoot,
			&r.Status,
			&r.TotalFound,
			&r.Succeeded,
			&r.CopiedOnly,
			&r.Failed,
			&r.Skipped,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Compile-time check that SQLiteStore implements the Store interface
var _ Store = (*SQLiteStore)(nil)
