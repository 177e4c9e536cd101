/*
Package sqlite provides the SQLite-backed implementation of habit.Store.

PURPOSE:
  Persisted record store for the habit-log engine. The same schema and
  queries would port to PostgreSQL with only dialect changes.

UPSERT ENFORCEMENT:
  habit_logs carries a UNIQUE index on (user_id, habit_id, date).
  UpsertLog writes with ON CONFLICT DO UPDATE, so a second write for
  the same key overwrites Completed/Progress, keeps the original row
  id, and can never duplicate the key. Last write wins; there is no
  version check.

KEY TABLES:
  users        credential records (unique username)
  habits       habit definitions
  routines     habit groupings (habit_ids stored as a JSON array)
  habit_logs   one row per (user, habit, calendar day)

DATES:
  Calendar days are stored as canonical "YYYY-MM-DD" TEXT, so lexical
  ORDER BY date is chronological. Timestamps are RFC3339 UTC TEXT.

CONCURRENCY:
  sync.RWMutex for in-process thread-safety; WAL mode for readers not
  blocking the single writer. No transactions span multiple records:
  bulk history loads are best-effort, a failure leaves a prefix
  committed.

USAGE:
  store, err := sqlite.New("./data/habits.db")  // ":memory:" for tests
  defer store.Close()

SEE ALSO:
  - habit/store.go: interface definition
  - habit/store/memory.go: in-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/loopline/habit-engine/habit"
)

// Store implements habit.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single connection: SQLite serialises writers anyway, and an
	// in-memory database exists per connection.
	db.SetMaxOpenConns(1)

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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS habits (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		target_type TEXT NOT NULL,
		target_value TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_habits_user ON habits(user_id);

	CREATE TABLE IF NOT EXISTS routines (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		habit_ids TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_routines_user ON routines(user_id);

	CREATE TABLE IF NOT EXISTS habit_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		habit_id TEXT NOT NULL,
		date TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		progress TEXT NOT NULL DEFAULT '0'
	);
	-- The upsert invariant: at most one log per (user, habit, day).
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_log_key ON habit_logs(user_id, habit_id, date);
	CREATE INDEX IF NOT EXISTS idx_logs_user_completed ON habit_logs(user_id, completed);
	CREATE INDEX IF NOT EXISTS idx_logs_habit ON habit_logs(habit_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) CreateUser(ctx context.Context, u habit.User) (habit.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, formatTime(u.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return habit.User{}, habit.ErrUserExists
		}
		return habit.User{}, fmt.Errorf("%w: create user: %v", habit.ErrServer, err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (habit.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (habit.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
	return scanUser(row)
}

// DeleteUser cascades the user's habits, routines and logs.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: delete user: %v", habit.ErrServer, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return habit.ErrNotFound
	}
	for _, stmt := range []string{
		"DELETE FROM habits WHERE user_id = ?",
		"DELETE FROM routines WHERE user_id = ?",
		"DELETE FROM habit_logs WHERE user_id = ?",
	} {
		if _, err := s.db.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("%w: cascade user delete: %v", habit.ErrServer, err)
		}
	}
	return nil
}

func scanUser(row *sql.Row) (habit.User, error) {
	var u habit.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return habit.User{}, habit.ErrNotFound
	}
	if err != nil {
		return habit.User{}, fmt.Errorf("%w: scan user: %v", habit.ErrServer, err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// =============================================================================
// HABITS
// =============================================================================

func (s *Store) CreateHabit(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (id, user_id, name, category, target_type, target_value, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.UserID, h.Name, h.Category, string(h.TargetType),
		h.TargetValue.String(), boolToInt(h.IsActive), formatTime(h.CreatedAt),
	)
	if err != nil {
		return habit.Habit{}, fmt.Errorf("%w: create habit: %v", habit.ErrServer, err)
	}
	return h, nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (habit.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	habits, err := s.queryHabits(ctx,
		"SELECT id, user_id, name, category, target_type, target_value, is_active, created_at FROM habits WHERE id = ?", id)
	if err != nil {
		return habit.Habit{}, err
	}
	if len(habits) == 0 {
		return habit.Habit{}, habit.ErrNotFound
	}
	return habits[0], nil
}

func (s *Store) ListHabits(ctx context.Context, userID string) ([]habit.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryHabits(ctx, `
		SELECT id, user_id, name, category, target_type, target_value, is_active, created_at
		FROM habits WHERE user_id = ?
		ORDER BY created_at, id`, userID)
}

// DeleteHabit cascades the habit's logs. Routines keep the dangling id;
// hydration drops it.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: delete habit: %v", habit.ErrServer, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return habit.ErrNotFound
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM habit_logs WHERE habit_id = ?", id); err != nil {
		return fmt.Errorf("%w: cascade habit delete: %v", habit.ErrServer, err)
	}
	return nil
}

func (s *Store) queryHabits(ctx context.Context, query string, args ...any) ([]habit.Habit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query habits: %v", habit.ErrServer, err)
	}
	defer rows.Close()

	habits := make([]habit.Habit, 0)
	for rows.Next() {
		var (
			h           habit.Habit
			targetType  string
			targetValue string
			isActive    int
			createdAt   string
		)
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Category,
			&targetType, &targetValue, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan habit: %v", habit.ErrServer, err)
		}
		h.TargetType = habit.TargetType(targetType)
		h.TargetValue = parseDecimal(targetValue)
		h.IsActive = isActive != 0
		h.CreatedAt = parseTime(createdAt)
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// =============================================================================
// LOGS
// =============================================================================

// UpsertLog writes or overwrites the record keyed by (user, habit, date).
// The ON CONFLICT clause keeps the original row id on overwrite.
func (s *Store) UpsertLog(ctx context.Context, l habit.Log) (habit.Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_logs (id, user_id, habit_id, date, completed, progress)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, habit_id, date) DO UPDATE SET
			completed = excluded.completed,
			progress = excluded.progress`,
		l.ID, l.UserID, l.HabitID, l.Date.String(), boolToInt(l.Completed), l.Progress.String(),
	)
	if err != nil {
		return habit.Log{}, fmt.Errorf("%w: upsert log: %v", habit.ErrServer, err)
	}

	// Read the stored row back: on overwrite the id is the original one.
	logs, err := s.queryLogs(ctx, `
		SELECT id, user_id, habit_id, date, completed, progress
		FROM habit_logs WHERE user_id = ? AND habit_id = ? AND date = ?`,
		l.UserID, l.HabitID, l.Date.String())
	if err != nil {
		return habit.Log{}, err
	}
	if len(logs) == 0 {
		return habit.Log{}, fmt.Errorf("%w: upsert log: row missing after write", habit.ErrServer)
	}
	return logs[0], nil
}

func (s *Store) ListCompletedLogs(ctx context.Context, userID string) ([]habit.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLogs(ctx, `
		SELECT id, user_id, habit_id, date, completed, progress
		FROM habit_logs WHERE user_id = ? AND completed = 1`, userID)
}

func (s *Store) ListCompletedLogsForHabit(ctx context.Context, userID, habitID string) ([]habit.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Lexical order on the canonical date TEXT is chronological.
	return s.queryLogs(ctx, `
		SELECT id, user_id, habit_id, date, completed, progress
		FROM habit_logs WHERE user_id = ? AND habit_id = ? AND completed = 1
		ORDER BY date`, userID, habitID)
}

func (s *Store) ListLogsForDate(ctx context.Context, userID string, date habit.Date) ([]habit.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLogs(ctx, `
		SELECT id, user_id, habit_id, date, completed, progress
		FROM habit_logs WHERE user_id = ? AND date = ?
		ORDER BY habit_id`, userID, date.String())
}

func (s *Store) DeleteLogsForHabit(ctx context.Context, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM habit_logs WHERE habit_id = ?", habitID); err != nil {
		return fmt.Errorf("%w: delete logs: %v", habit.ErrServer, err)
	}
	return nil
}

func (s *Store) queryLogs(ctx context.Context, query string, args ...any) ([]habit.Log, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query logs: %v", habit.ErrServer, err)
	}
	defer rows.Close()

	logs := make([]habit.Log, 0)
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func scanLog(rows *sql.Rows) (habit.Log, error) {
	var (
		l         habit.Log
		date      string
		completed int
		progress  string
	)
	if err := rows.Scan(&l.ID, &l.UserID, &l.HabitID, &date, &completed, &progress); err != nil {
		return habit.Log{}, fmt.Errorf("%w: scan log: %v", habit.ErrServer, err)
	}
	d, err := habit.ParseDate(date)
	if err != nil {
		return habit.Log{}, fmt.Errorf("%w: stored date %q is not canonical", habit.ErrServer, date)
	}
	l.Date = d
	l.Completed = completed != 0
	l.Progress = parseDecimal(progress)
	return l, nil
}

// =============================================================================
// ROUTINES
// =============================================================================

func (s *Store) CreateRoutine(ctx context.Context, r habit.Routine) (habit.Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habitIDs, err := json.Marshal(r.HabitIDs)
	if err != nil {
		return habit.Routine{}, fmt.Errorf("%w: encode habit ids: %v", habit.ErrServer, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO routines (id, user_id, name, habit_ids, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Name, string(habitIDs), formatTime(r.CreatedAt),
	)
	if err != nil {
		return habit.Routine{}, fmt.Errorf("%w: create routine: %v", habit.ErrServer, err)
	}
	return r, nil
}

func (s *Store) ListRoutines(ctx context.Context, userID string) ([]habit.Routine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, habit_ids, created_at
		FROM routines WHERE user_id = ?
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: query routines: %v", habit.ErrServer, err)
	}
	defer rows.Close()

	routines := make([]habit.Routine, 0)
	for rows.Next() {
		var (
			r         habit.Routine
			habitIDs  string
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &habitIDs, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan routine: %v", habit.ErrServer, err)
		}
		if err := json.Unmarshal([]byte(habitIDs), &r.HabitIDs); err != nil {
			return nil, fmt.Errorf("%w: decode habit ids: %v", habit.ErrServer, err)
		}
		r.CreatedAt = parseTime(createdAt)
		routines = append(routines, r)
	}
	return routines, rows.Err()
}

func (s *Store) DeleteRoutine(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM routines WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: delete routine: %v", habit.ErrServer, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return habit.ErrNotFound
	}
	return nil
}

func (s *Store) HydrateRoutines(ctx context.Context, userID string) ([]habit.HydratedRoutine, error) {
	routines, err := s.ListRoutines(ctx, userID)
	if err != nil {
		return nil, err
	}
	habits, err := s.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	return habit.HydrateRoutines(routines, habits), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseDecimal(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
