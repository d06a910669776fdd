// Package storage provides SQLite-based persistence for pipeline run
// reports. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// RunReport represents one completed pipeline run over an asset root.
type RunReport struct {
	ID        int64
	Root      string
	Ticks     uint64
	Total     int
	Complete  int
	Failed    int
	CreatedAt time.Time
}

// AssetResult represents the final readiness of one asset in a run.
type AssetResult struct {
	ID           int64
	RunID        int64
	Slug         string
	Kind         string
	State        string
	ReasonCode   string // Empty unless State is "failed"
	ReasonDetail string
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL DEFAULT 0,
			complete INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_recent ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS run_assets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			slug TEXT NOT NULL,
			kind TEXT NOT NULL,
			state TEXT NOT NULL,
			reason_code TEXT NOT NULL DEFAULT '',
			reason_detail TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_run_assets_run_id ON run_assets(run_id);
		CREATE INDEX IF NOT EXISTS idx_run_assets_slug ON run_assets(slug);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run and its per-asset results in one
// transaction. Returns the ID of the inserted run.
func (s *Store) SaveRun(report RunReport, results []AssetResult) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO runs (root, ticks, total, complete, failed) VALUES (?, ?, ?, ?, ?)",
		report.Root, report.Ticks, report.Total, report.Complete, report.Failed,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	for _, r := range results {
		if _, err := tx.Exec(
			`INSERT INTO run_assets (run_id, slug, kind, state, reason_code, reason_detail)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, r.Slug, r.Kind, r.State, r.ReasonCode, r.ReasonDetail,
		); err != nil {
			return 0, fmt.Errorf("storage: cannot save asset result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit run: %w", err)
	}

	return runID, nil
}

// RunByID retrieves a run by its ID. Returns nil if no such run exists.
func (s *Store) RunByID(runID int64) (*RunReport, error) {
	var report RunReport
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, root, ticks, total, complete, failed, created_at
		 FROM runs
		 WHERE id = ?`,
		runID,
	).Scan(
		&report.ID,
		&report.Root,
		&report.Ticks,
		&report.Total,
		&report.Complete,
		&report.Failed,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}

	report.CreatedAt = parseTimestamp(createdAt)
	return &report, nil
}

// RecentRuns retrieves the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]RunReport, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, root, ticks, total, complete, failed, created_at
		 FROM runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var reports []RunReport
	for rows.Next() {
		var report RunReport
		var createdAt any
		if err := rows.Scan(
			&report.ID,
			&report.Root,
			&report.Ticks,
			&report.Total,
			&report.Complete,
			&report.Failed,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		report.CreatedAt = parseTimestamp(createdAt)
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return reports, nil
}

// AssetResults retrieves the per-asset results of a run in slug order.
func (s *Store) AssetResults(runID int64) ([]AssetResult, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, slug, kind, state, reason_code, reason_detail
		 FROM run_assets
		 WHERE run_id = ?
		 ORDER BY slug`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query asset results: %w", err)
	}
	defer rows.Close()

	var results []AssetResult
	for rows.Next() {
		var r AssetResult
		if err := rows.Scan(&r.ID, &r.RunID, &r.Slug, &r.Kind, &r.State, &r.ReasonCode, &r.ReasonDetail); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// FailureHistory retrieves the most recent failed results recorded for a
// slug across runs, newest run first.
func (s *Store) FailureHistory(slug string, limit int) ([]AssetResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, slug, kind, state, reason_code, reason_detail
		 FROM run_assets
		 WHERE slug = ? AND state = 'failed'
		 ORDER BY run_id DESC
		 LIMIT ?`,
		slug, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query failure history: %w", err)
	}
	defer rows.Close()

	var results []AssetResult
	for rows.Next() {
		var r AssetResult
		if err := rows.Scan(&r.ID, &r.RunID, &r.Slug, &r.Kind, &r.State, &r.ReasonCode, &r.ReasonDetail); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// ClearRuns deletes all recorded runs and their asset results.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM run_assets"); err != nil {
		return fmt.Errorf("storage: cannot clear asset results: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// parseTimestamp handles the driver returning either time.Time or a
// formatted string for DATETIME columns.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
