// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists batch outcomes in a SQLite database so past
// runs can be listed and inspected.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/imgconv/pkg/types"
)

const dbFile = "history.db"

// Store manages the batch history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// BatchRecord is one row in the batch history.
type BatchRecord struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	TargetFormat types.Format
	DPI          int
	OutputDir    string
	Converted    int
	Skipped      int
	Failed       int
	Cancelled    int
}

// NewStore opens or creates the history database at cfg.Dir/history.db,
// creating the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			target_format TEXT NOT NULL,
			dpi INTEGER,
			output_dir TEXT,
			converted INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			cancelled INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id TEXT NOT NULL REFERENCES batches(id),
			source_path TEXT NOT NULL,
			output_path TEXT,
			status TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_batch_id ON results(batch_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores one batch and its per-file results in a transaction. An
// empty record ID gets a fresh UUID; the assigned ID is returned.
func (s *Store) Record(ctx context.Context, rec BatchRecord, results []types.ConversionResult) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, started_at, finished_at, target_format, dpi, output_dir,
			converted, skipped, failed, cancelled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.TargetFormat.String(),
		rec.DPI,
		rec.OutputDir,
		rec.Converted, rec.Skipped, rec.Failed, rec.Cancelled,
	)
	if err != nil {
		return "", fmt.Errorf("inserting batch %s: %w", rec.ID, err)
	}

	for _, r := range results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO results (batch_id, source_path, output_path, status, error)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.ID, r.SourcePath, r.OutputPath, string(r.Status), r.Error,
		)
		if err != nil {
			return "", fmt.Errorf("inserting result for %s: %w", r.SourcePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing batch %s: %w", rec.ID, err)
	}
	return rec.ID, nil
}

// List returns the most recent batches, newest first. A non-positive
// limit applies the store default.
func (s *Store) List(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, target_format, dpi, output_dir,
			converted, skipped, failed, cancelled
		 FROM batches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()

	var records []BatchRecord
	for rows.Next() {
		var rec BatchRecord
		var started, finished, target string
		if err := rows.Scan(&rec.ID, &started, &finished, &target, &rec.DPI,
			&rec.OutputDir, &rec.Converted, &rec.Skipped, &rec.Failed, &rec.Cancelled); err != nil {
			return nil, fmt.Errorf("scanning batch row: %w", err)
		}
		rec.TargetFormat = types.Format(target)
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Results returns the per-file results recorded for one batch.
func (s *Store) Results(ctx context.Context, batchID string) ([]types.ConversionResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_path, output_path, status, error
		 FROM results WHERE batch_id = ? ORDER BY rowid`, batchID)
	if err != nil {
		return nil, fmt.Errorf("querying results for %s: %w", batchID, err)
	}
	defer rows.Close()

	var results []types.ConversionResult
	for rows.Next() {
		var r types.ConversionResult
		var status string
		if err := rows.Scan(&r.SourcePath, &r.OutputPath, &status, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		r.Status = types.ResultStatus(status)
		results = append(results, r)
	}
	return results, rows.Err()
}
