/*
Package sqlite provides the SQLite-backed implementation of roster.Store.

PURPOSE:
  Persists planning months, ordered rosters, submission state, raw
  preference rows, and the latest solve outcome per month. The engine never
  touches storage; everything here feeds or records one solve invocation.

KEY TABLES:
  months:      one row per planning month
  staff:       roster entries; position preserves insertion order
  preferences: one row per (month, staff, day) with the raw value
  schedules:   latest solve outcome per month (labels as JSON, run metadata)

CONCURRENCY:
  sync.RWMutex serializes writers; month records are independent, so solves
  for different months never contend beyond the mutex.

WAL MODE:
  SQLite is opened with WAL and foreign keys on: readers don't block, a
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/shifts.db")   // ":memory:" for tests
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  svc := roster.NewService(store)

SEE ALSO:
  - roster/types.go: the Store interface this implements
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/minagawaharuto/shift-automation-tools/engine"
	"github.com/minagawaharuto/shift-automation-tools/roster"
)

// Store implements roster.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ roster.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS months (
		month TEXT PRIMARY KEY,
		num_days INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS staff (
		month TEXT NOT NULL REFERENCES months(month) ON DELETE CASCADE,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		submitted BOOLEAN NOT NULL DEFAULT FALSE,
		submitted_at TEXT,
		PRIMARY KEY (month, name)
	);

	CREATE INDEX IF NOT EXISTS idx_staff_month_position
		ON staff(month, position);

	CREATE TABLE IF NOT EXISTS preferences (
		month TEXT NOT NULL,
		name TEXT NOT NULL,
		day INTEGER NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (month, name, day),
		FOREIGN KEY (month, name) REFERENCES staff(month, name) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS schedules (
		month TEXT PRIMARY KEY REFERENCES months(month) ON DELETE CASCADE,
		run_id TEXT NOT NULL,
		status TEXT NOT NULL,
		score INTEGER NOT NULL,
		labels_json TEXT NOT NULL,
		solved_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// MONTHS AND ROSTER
// =============================================================================

// CreateMonth creates a month with its ordered roster in one transaction.
func (s *Store) CreateMonth(ctx context.Context, month roster.Month, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO months (month, num_days, created_at) VALUES (?, ?, ?)`,
		month.String(), month.Days(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return roster.ErrMonthExists
	}

	for i, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO staff (month, name, position) VALUES (?, ?, ?)`,
			month.String(), name, i); err != nil {
			return fmt.Errorf("insert staff %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// MonthExists reports whether the month row is present.
func (s *Store) MonthExists(ctx context.Context, month roster.Month) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM months WHERE month = ?`, month.String()).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListStaff returns the roster in insertion order.
func (s *Store) ListStaff(ctx context.Context, month roster.Month) ([]roster.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireMonth(ctx, month); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, position, submitted, submitted_at
		FROM staff WHERE month = ? ORDER BY position`,
		month.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []roster.Staff
	for rows.Next() {
		var st roster.Staff
		var submittedAt sql.NullString
		if err := rows.Scan(&st.Name, &st.Position, &st.Submitted, &submittedAt); err != nil {
			return nil, err
		}
		if submittedAt.Valid {
			if t, err := time.Parse(time.RFC3339, submittedAt.String); err == nil {
				st.SubmittedAt = &t
			}
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// AddStaff appends a name at the next roster position.
func (s *Store) AddStaff(ctx context.Context, month roster.Month, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMonth(ctx, month); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO staff (month, name, position)
		SELECT ?, ?, COALESCE(MAX(position), -1) + 1 FROM staff WHERE month = ?`,
		month.String(), name, month.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return roster.ErrStaffExists
	}
	return nil
}

// RemoveStaff deletes the roster entry; preferences cascade.
func (s *Store) RemoveStaff(ctx context.Context, month roster.Month, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM staff WHERE month = ? AND name = ?`, month.String(), name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return roster.ErrStaffNotFound
	}
	return nil
}

// =============================================================================
// PREFERENCES
// =============================================================================

// SavePreferences replaces the staff member's row and marks them submitted.
func (s *Store) SavePreferences(ctx context.Context, month roster.Month, name string, values []engine.Preference, submittedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE staff SET submitted = TRUE, submitted_at = ?
		WHERE month = ? AND name = ?`,
		submittedAt.UTC().Format(time.RFC3339), month.String(), name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return roster.ErrStaffNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM preferences WHERE month = ? AND name = ?`,
		month.String(), name); err != nil {
		return err
	}
	for day, v := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO preferences (month, name, day, value) VALUES (?, ?, ?, ?)`,
			month.String(), name, day, string(v)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetPreferences returns the stored row in day order, ok=false when the
// staff member has not submitted.
func (s *Store) GetPreferences(ctx context.Context, month roster.Month, name string) ([]engine.Preference, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT value FROM preferences
		WHERE month = ? AND name = ? ORDER BY day`,
		month.String(), name)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var out []engine.Preference
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, false, err
		}
		out = append(out, engine.Preference(v))
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return out, len(out) > 0, nil
}

// =============================================================================
// SCHEDULES
// =============================================================================

// SaveSchedule upserts the latest solve outcome for the month.
func (s *Store) SaveSchedule(ctx context.Context, record roster.ScheduleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	labels, err := json.Marshal(record.Labels)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO schedules (month, run_id, status, score, labels_json, solved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(month) DO UPDATE SET
			run_id = excluded.run_id,
			status = excluded.status,
			score = excluded.score,
			labels_json = excluded.labels_json,
			solved_at = excluded.solved_at`,
		record.Month.String(), record.RunID, record.Status.String(),
		record.Score, string(labels), record.SolvedAt.UTC().Format(time.RFC3339))
	return err
}

// GetSchedule returns the latest solve outcome for the month.
func (s *Store) GetSchedule(ctx context.Context, month roster.Month) (*roster.ScheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		runID, status, labelsJSON, solvedAt string
		score                               int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, status, score, labels_json, solved_at
		FROM schedules WHERE month = ?`, month.String()).
		Scan(&runID, &status, &score, &labelsJSON, &solvedAt)
	if err == sql.ErrNoRows {
		return nil, roster.ErrNoResult
	}
	if err != nil {
		return nil, err
	}

	record := &roster.ScheduleRecord{
		RunID: runID,
		Month: month,
		Score: score,
	}
	// Only successful statuses are ever persisted.
	if status == engine.StatusOptimal.String() {
		record.Status = engine.StatusOptimal
	} else {
		record.Status = engine.StatusFeasible
	}
	if err := json.Unmarshal([]byte(labelsJSON), &record.Labels); err != nil {
		return nil, fmt.Errorf("corrupt schedule for %s: %w", month, err)
	}
	if t, err := time.Parse(time.RFC3339, solvedAt); err == nil {
		record.SolvedAt = t
	}
	return record, nil
}

func (s *Store) requireMonth(ctx context.Context, month roster.Month) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM months WHERE month = ?`, month.String()).Scan(&one)
	if err == sql.ErrNoRows {
		return roster.ErrMonthNotFound
	}
	return err
}
