/*
store.go - Persistence contract shared by both backends

PURPOSE:
  Defines the interface between the analytics engine and the record
  store. The networked backend and the local backend each sit on top
  of a Store implementation; the analytics functions (streak.go,
  heatmap.go) are pure folds over what a Store returns, so the two
  backends cannot drift apart semantically.

UPSERT CONTRACT:
  UpsertLog writes or overwrites the record keyed by
  (UserID, HabitID, Date). Repeated identical calls are idempotent:
  exactly one record with that key ever exists. An overwrite keeps the
  original record ID and replaces Completed/Progress.

ORDERING:
  ListCompletedLogsForHabit returns logs ascending by date; the streak
  calculator depends on it. ListCompletedLogs has no order guarantee.

NO TRANSACTIONS:
  No atomicity across multiple records. A bulk history load that fails
  partway leaves a prefix committed; callers treat it as best-effort.
  A single upsert is atomic with respect to its own key, last write
  wins.

IMPLEMENTATIONS:
  - habit/store/memory.go: in-memory (tests, dev)
  - store/sqlite/sqlite.go: persisted

SEE ALSO:
  - streak.go, heatmap.go: consumers of the log reads
*/
package habit

import "context"

// Store persists users, habits, routines and logs for a single-user,
// single-session deployment. Implementations report failures using the
// taxonomy in errors.go.
type Store interface {
	// Users. CreateUser returns ErrUserExists on a duplicate username.
	// DeleteUser cascades the user's habits, routines and logs.
	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	DeleteUser(ctx context.Context, id string) error

	// Habits. DeleteHabit cascades the habit's logs; routines keep the
	// dangling id and hydration drops it. Listing is ordered by
	// creation time, then id, identically in every implementation.
	CreateHabit(ctx context.Context, h Habit) (Habit, error)
	GetHabit(ctx context.Context, id string) (Habit, error)
	ListHabits(ctx context.Context, userID string) ([]Habit, error)
	DeleteHabit(ctx context.Context, id string) error

	// Logs.
	UpsertLog(ctx context.Context, l Log) (Log, error)
	ListCompletedLogs(ctx context.Context, userID string) ([]Log, error)
	ListCompletedLogsForHabit(ctx context.Context, userID, habitID string) ([]Log, error)
	ListLogsForDate(ctx context.Context, userID string, date Date) ([]Log, error)
	DeleteLogsForHabit(ctx context.Context, habitID string) error

	// Routines.
	CreateRoutine(ctx context.Context, r Routine) (Routine, error)
	ListRoutines(ctx context.Context, userID string) ([]Routine, error)
	DeleteRoutine(ctx context.Context, id string) error

	// HydrateRoutines is the explicit join of routines to habit
	// records. Missing references are dropped, not errored.
	HydrateRoutines(ctx context.Context, userID string) ([]HydratedRoutine, error)
}
