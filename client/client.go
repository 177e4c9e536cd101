/*
Package client defines the data-access facade: one logical contract
(request shapes, response shapes, error classifications) satisfied by
two interchangeable backends.

PURPOSE:
  UI collaborators program against Client and never learn which backend
  is active. The networked backend (client/remote) talks HTTP to the
  api server; the local backend (client/local) sits directly on a
  habit.Store. Both return the record shapes defined in the habit
  package and classify failures with the habit error taxonomy, so
  results are indistinguishable by construction. The analytics views
  (heatmap, streaks) are computed by the shared functions in the habit
  package on whichever side holds the records.

SESSION MODEL:
  Single user, single session. SignIn/SignUp establish the session;
  every other call requires one and fails with ErrUnauthorized
  otherwise. Backends are mutually exclusive: a process selects one
  Client for its lifetime, never both.

REQUEST SHAPES:
  The request types here carry the JSON tags used on the wire, and the
  conversion/validation methods both backends share. Validation lives
  here exactly once so the backends cannot accept different inputs.

SEE ALSO:
  - client/local, client/remote: the two implementations
  - api: the HTTP surface the remote backend consumes
*/
package client

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/loopline/habit-engine/habit"
)

// Client is the backend-agnostic data-access contract.
type Client interface {
	// Authentication. SignIn fails with ErrInvalidCredentials, SignUp
	// with ErrUserExists.
	SignUp(ctx context.Context, creds Credentials) (Session, error)
	SignIn(ctx context.Context, creds Credentials) (Session, error)

	// Habit CRUD.
	CreateHabit(ctx context.Context, req NewHabit) (habit.Habit, error)
	ListHabits(ctx context.Context) ([]habit.Habit, error)
	DeleteHabit(ctx context.Context, habitID string) error

	// Log upsert and day view.
	UpsertLog(ctx context.Context, entry LogEntry) (habit.Log, error)
	ListLogsForDate(ctx context.Context, date habit.Date) ([]habit.Log, error)

	// Routines. ListRoutines returns habit ids hydrated to records;
	// dangling references are dropped, not errored.
	CreateRoutine(ctx context.Context, req NewRoutine) (habit.Routine, error)
	ListRoutines(ctx context.Context) ([]habit.HydratedRoutine, error)
	DeleteRoutine(ctx context.Context, routineID string) error

	// Stats. A backend failure surfaces as ErrServer, never as empty
	// analytics.
	Heatmap(ctx context.Context) (map[string]int, error)
	Streaks(ctx context.Context) ([]habit.HabitStreak, error)
}

// =============================================================================
// REQUEST/RESPONSE SHAPES
// =============================================================================

// Credentials is the sign-in/sign-up request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the fields both backends require.
func (c Credentials) Validate() error {
	if c.Username == "" {
		return &habit.ValidationError{Field: "username", Message: "must not be empty"}
	}
	if c.Password == "" {
		return &habit.ValidationError{Field: "password", Message: "must not be empty"}
	}
	return nil
}

// Session is the result of a successful authentication.
type Session struct {
	Token string     `json:"token"`
	User  habit.User `json:"user"`
}

// NewHabit is the habit creation request.
type NewHabit struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	TargetType  string          `json:"targetType"`
	TargetValue decimal.Decimal `json:"targetValue"`
}

// Habit builds the validated record for the signed-in user.
func (n NewHabit) Habit(userID, id string, now time.Time) (habit.Habit, error) {
	h := habit.Habit{
		ID:          id,
		UserID:      userID,
		Name:        n.Name,
		Category:    n.Category,
		TargetType:  habit.TargetType(n.TargetType),
		TargetValue: n.TargetValue,
		IsActive:    true,
		CreatedAt:   now,
	}
	if err := h.Validate(); err != nil {
		return habit.Habit{}, err
	}
	return h, nil
}

// LogEntry is the log upsert request.
type LogEntry struct {
	HabitID   string          `json:"habitId"`
	Date      habit.Date      `json:"date"`
	Completed bool            `json:"completed"`
	Progress  decimal.Decimal `json:"progress"`
}

// Log builds the validated record keyed by (user, habit, date). The
// habit must exist and belong to the user; an unknown habit id is a
// validation failure, matching both backends.
func (e LogEntry) Log(ctx context.Context, s habit.Store, userID, id string) (habit.Log, error) {
	if e.HabitID == "" {
		return habit.Log{}, &habit.ValidationError{Field: "habitId", Message: "must not be empty"}
	}
	if e.Date.IsZero() {
		return habit.Log{}, &habit.ValidationError{Field: "date", Message: "must be a YYYY-MM-DD date"}
	}
	h, err := s.GetHabit(ctx, e.HabitID)
	if err != nil || h.UserID != userID {
		return habit.Log{}, &habit.ValidationError{Field: "habitId", Message: "unknown habit"}
	}
	return habit.Log{
		ID:        id,
		UserID:    userID,
		HabitID:   e.HabitID,
		Date:      e.Date,
		Completed: e.Completed,
		Progress:  e.Progress,
	}, nil
}

// NewRoutine is the routine creation request.
type NewRoutine struct {
	Name     string   `json:"name"`
	HabitIDs []string `json:"habitIds"`
}

// Routine builds the validated record for the signed-in user.
func (n NewRoutine) Routine(userID, id string, now time.Time) (habit.Routine, error) {
	r := habit.Routine{
		ID:        id,
		UserID:    userID,
		Name:      n.Name,
		HabitIDs:  n.HabitIDs,
		CreatedAt: now,
	}
	if r.HabitIDs == nil {
		r.HabitIDs = []string{}
	}
	if err := r.Validate(); err != nil {
		return habit.Routine{}, err
	}
	return r, nil
}
