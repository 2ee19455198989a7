// Package repository persists pipeline runs and their results to SQLite.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// SQLiteStore implements the ResultStore interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite result store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// NewSQLiteStoreWithDB wraps an existing database handle. Used by tests.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		study_name TEXT NOT NULL DEFAULT '',
		dataset TEXT NOT NULL,
		record_count INTEGER NOT NULL DEFAULT 0,
		eligible_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS results (
		run_id TEXT NOT NULL,
		subject_id INTEGER NOT NULL,
		hadm_id INTEGER NOT NULL,
		eligibility_heuristic_label INTEGER NOT NULL DEFAULT 0,
		eligibility_ml_score REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, hadm_id),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS comparisons (
		run_id TEXT NOT NULL,
		k INTEGER NOT NULL,
		recall_at_k_heuristic REAL NOT NULL,
		recall_at_k_ml REAL NOT NULL,
		precision_at_k_heuristic REAL NOT NULL,
		precision_at_k_ml REAL NOT NULL,
		PRIMARY KEY (run_id, k),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRun scans a row into a RunRecord.
func scanRun(s scanner) (*domain.RunRecord, error) {
	run := &domain.RunRecord{}
	err := s.Scan(&run.ID, &run.StudyName, &run.Dataset,
		&run.RecordCount, &run.EligibleCount, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// SaveRun stores a run summary.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, study_name, dataset, record_count, eligible_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.StudyName, run.Dataset, run.RecordCount, run.EligibleCount, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// SaveResults stores the per-admission results for a run in one
// transaction.
func (s *SQLiteStore) SaveResults(ctx context.Context, runID string, rows []domain.ScoredAdmission) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, subject_id, hadm_id, eligibility_heuristic_label, eligibility_ml_score)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, runID, row.SubjectID, row.AdmissionID,
			row.EligibilityHeuristicLabel, row.EligibilityMLScore); err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	return tx.Commit()
}

// SaveComparison stores the screening comparison table for a run.
func (s *SQLiteStore) SaveComparison(ctx context.Context, runID string, rows []domain.ComparisonRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO comparisons (run_id, k, recall_at_k_heuristic, recall_at_k_ml,
			precision_at_k_heuristic, precision_at_k_ml)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, runID, row.K, row.RecallHeuristic, row.RecallML,
			row.PrecisionHeuristic, row.PrecisionML); err != nil {
			return fmt.Errorf("failed to insert comparison row: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run summary by id. Returns nil when absent.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*domain.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, study_name, dataset, record_count, eligible_count, created_at
		FROM runs
		WHERE id = ?
	`, runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return run, nil
}

// LatestRun retrieves the most recent run summary. Returns nil when the
// store is empty.
func (s *SQLiteStore) LatestRun(ctx context.Context) (*domain.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, study_name, dataset, record_count, eligible_count, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return run, nil
}

// ListRuns returns recent run summaries, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, study_name, dataset, record_count, eligible_count, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var result []*domain.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, run)
	}
	return result, rows.Err()
}

// GetComparison retrieves the comparison table for a run, ordered by K.
func (s *SQLiteStore) GetComparison(ctx context.Context, runID string) ([]domain.ComparisonRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT k, recall_at_k_heuristic, recall_at_k_ml,
			precision_at_k_heuristic, precision_at_k_ml
		FROM comparisons
		WHERE run_id = ?
		ORDER BY k ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparison: %w", err)
	}
	defer rows.Close()

	var result []domain.ComparisonRow
	for rows.Next() {
		var row domain.ComparisonRow
		if err := rows.Scan(&row.K, &row.RecallHeuristic, &row.RecallML,
			&row.PrecisionHeuristic, &row.PrecisionML); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
