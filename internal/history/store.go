// Package history persists past scan runs in a local SQLite database
// so CI trends survive individual invocations. Recording is opt-in;
// the scan itself never depends on the store.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"deadsnakes/internal/relics"
)

// Store provides persistence for scan runs at <root>/.deadsnakes/history.db.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// Run is one recorded scan.
type Run struct {
	ID              string    `json:"id"`
	Root            string    `json:"root"`
	ScannedAt       time.Time `json:"scannedAt"`
	Duration        string    `json:"duration"`
	TotalFindings   int       `json:"totalFindings"`
	FilesScanned    int       `json:"filesScanned"`
	FilesWithRelics int       `json:"filesWithRelics"`
}

// OpenStore opens or creates the history database for a scan root.
func OpenStore(root string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Join(root, ".deadsnakes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create .deadsnakes directory: %w", err)
	}

	dbPath := filepath.Join(dir, "history.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{conn: conn, logger: logger, dbPath: dbPath}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return store, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			scanned_at TEXT NOT NULL,
			duration TEXT NOT NULL,
			total_findings INTEGER NOT NULL,
			files_scanned INTEGER NOT NULL,
			files_with_relics INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_scanned_at ON runs(scanned_at DESC);

		CREATE TABLE IF NOT EXISTS findings (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			file TEXT NOT NULL,
			line INTEGER NOT NULL,
			col INTEGER NOT NULL,
			kind TEXT NOT NULL,
			snippet TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// RecordRun stores a completed scan and its findings atomically.
func (s *Store) RecordRun(result *relics.ScanResult) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO runs (id, root, scanned_at, duration, total_findings, files_scanned, files_with_relics)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.Root,
		result.ScannedAt.UTC().Format(time.RFC3339Nano),
		result.Duration,
		result.Summary.TotalFindings,
		result.Summary.FilesScanned,
		result.Summary.FilesWithRelics,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range result.Findings {
		if _, err := tx.Exec(
			`INSERT INTO findings (run_id, file, line, col, kind, snippet) VALUES (?, ?, ?, ?, ?, ?)`,
			result.RunID, f.File, f.Line, f.Column, string(f.Kind), f.Snippet,
		); err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Debug("Recorded scan run", "runId", result.RunID, "findings", len(result.Findings))
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(
		`SELECT id, root, scanned_at, duration, total_findings, files_scanned, files_with_relics
		 FROM runs ORDER BY scanned_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var scannedAt string
		if err := rows.Scan(&r.ID, &r.Root, &scannedAt, &r.Duration,
			&r.TotalFindings, &r.FilesScanned, &r.FilesWithRelics); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		r.ScannedAt, _ = time.Parse(time.RFC3339Nano, scannedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunFindings returns the findings recorded for one run, in their
// original order.
func (s *Store) RunFindings(runID string) ([]relics.Finding, error) {
	rows, err := s.conn.Query(
		`SELECT file, line, col, kind, snippet FROM findings WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var findings []relics.Finding
	for rows.Next() {
		var f relics.Finding
		var kind string
		if err := rows.Scan(&f.File, &f.Line, &f.Column, &kind, &f.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan finding row: %w", err)
		}
		f.Kind = relics.Kind(kind)
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
