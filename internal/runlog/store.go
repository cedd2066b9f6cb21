package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists per-contact run outcomes in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run ledger database and applies
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Begin inserts a contact in merging state for the given run.
func (s *Store) Begin(ctx context.Context, runID, contact string) (*Record, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO contact_runs (run_id, contact, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		runID, contact, StatusMerging, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert contact run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// MarkMerged records a successful merge with its reference counts.
func (s *Store) MarkMerged(ctx context.Context, id int64, references, resolved, unresolved int) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE contact_runs
         SET status = ?, references_found = ?, resolved = ?, unresolved = ?,
             error_message = NULL, updated_at = ?
         WHERE id = ?`,
		StatusMerged, references, resolved, unresolved,
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("mark merged: %w", err)
	}
	return nil
}

// MarkFailed records a contact failure without aborting the run.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE contact_runs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, nullableString(message),
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// GetByID fetches a record by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM contact_runs WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// ListRun returns all records of a run ordered by creation time.
func (s *Store) ListRun(ctx context.Context, runID string) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM contact_runs WHERE run_id = ? ORDER BY created_at, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// LatestRunID returns the most recently started run, or empty when the
// ledger is empty.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT run_id FROM contact_runs ORDER BY created_at DESC, id DESC LIMIT 1`,
	)
	var runID string
	if err := row.Scan(&runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("latest run id: %w", err)
	}
	return runID, nil
}

// Summarize aggregates the outcome of a run.
func (s *Store) Summarize(ctx context.Context, runID string) (Summary, error) {
	records, err := s.ListRun(ctx, runID)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{RunID: runID}
	for _, record := range records {
		summary.Contacts++
		summary.References += record.References
		summary.Resolved += record.Resolved
		summary.Unresolved += record.Unresolved
		switch record.Status {
		case StatusMerged:
			summary.Merged++
		case StatusFailed:
			summary.Failed++
		}
	}
	return summary, nil
}

const recordColumns = "id, run_id, contact, status, references_found, resolved, unresolved, error_message, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           int64
		runID        string
		contact      string
		statusStr    string
		references   int
		resolved     int
		unresolved   int
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
	)

	if err := scanner.Scan(
		&id, &runID, &contact, &statusStr,
		&references, &resolved, &unresolved,
		&errorMessage, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:           id,
		RunID:        runID,
		Contact:      contact,
		Status:       Status(statusStr),
		References:   references,
		Resolved:     resolved,
		Unresolved:   unresolved,
		ErrorMessage: errorMessage.String,
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		record.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
