package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopline/habit-engine/habit"
	"github.com/loopline/habit-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *sqlite.Store, id, username string) {
	t.Helper()
	_, err := s.CreateUser(context.Background(), habit.User{
		ID: id, Username: username, PasswordHash: "x", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func seedHabit(t *testing.T, s *sqlite.Store, userID, id, name string, createdAt time.Time) {
	t.Helper()
	_, err := s.CreateHabit(context.Background(), habit.Habit{
		ID: id, UserID: userID, Name: name,
		TargetType: habit.TargetCount, TargetValue: decimal.NewFromInt(1),
		IsActive: true, CreatedAt: createdAt,
	})
	require.NoError(t, err)
}

func logFor(t *testing.T, userID, habitID, id, date string, completed bool, progress int64) habit.Log {
	t.Helper()
	d, err := habit.ParseDate(date)
	require.NoError(t, err)
	return habit.Log{
		ID: id, UserID: userID, HabitID: habitID,
		Date: d, Completed: completed, Progress: decimal.NewFromInt(progress),
	}
}

// =============================================================================
// USERS
// =============================================================================

func TestSQLite_CreateUser_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	created, err := s.CreateUser(ctx, habit.User{
		ID: "u1", Username: "sam", PasswordHash: "hash", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	byID, err := s.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "sam", byID.Username)

	byName, err := s.GetUserByUsername(ctx, "sam")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)
}

func TestSQLite_CreateUser_DuplicateUsername_Rejected(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1", "sam")

	_, err := s.CreateUser(ctx, habit.User{ID: "u2", Username: "sam", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, habit.ErrUserExists)
	assert.ErrorIs(t, err, habit.ErrValidation)
}

func TestSQLite_GetUser_Absent_NotFound(t *testing.T) {
	_, err := newStore(t).GetUser(context.Background(), "nope")
	assert.ErrorIs(t, err, habit.ErrNotFound)
}

// =============================================================================
// UPSERT INVARIANT
// =============================================================================

func TestSQLite_UpsertLog_Overwrite_SingleRecordKeepsID(t *testing.T) {
	// GIVEN: A log for (u1, h1, 2024-02-01) with progress 10
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1", "sam")
	seedHabit(t, s, "u1", "h1", "Run", time.Now().UTC())

	_, err := s.UpsertLog(ctx, logFor(t, "u1", "h1", "log-1", "2024-02-01", true, 10))
	require.NoError(t, err)

	// WHEN: A second write hits the same (user, habit, date) key
	updated, err := s.UpsertLog(ctx, logFor(t, "u1", "h1", "log-2", "2024-02-01", true, 20))
	require.NoError(t, err)

	// THEN: A single record survives with the original id and the new progress
	assert.Equal(t, "log-1", updated.ID)
	logs, err := s.ListCompletedLogsForHabit(ctx, "u1", "h1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Progress.Equal(decimal.NewFromInt(20)))
}

func TestSQLite_UpsertLog_IdenticalRepeat_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1", "sam")
	seedHabit(t, s, "u1", "h1", "Run", time.Now().UTC())

	for i := 0; i < 3; i++ {
		_, err := s.UpsertLog(ctx, logFor(t, "u1", "h1", "log-1", "2024-02-01", true, 10))
		require.NoError(t, err)
	}

	logs, err := s.ListCompletedLogsForHabit(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

// =============================================================================
// READ ORDERING
// =============================================================================

func TestSQLite_ListCompletedLogsForHabit_AscendingByDate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1", "sam")
	seedHabit(t, s, "u1", "h1", "Run", time.Now().UTC())

	for i, date := range []string{"2024-02-03", "2024-02-01", "2024-02-02"} {
		_, err := s.UpsertLog(ctx, logFor(t, "u1", "h1", string(rune('a'+i)), date, true, 1))
		require.NoError(t, err)
	}

	logs, err := s.ListCompletedLogsForHabit(ctx, "u1", "h1")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "2024-02-01", logs[0].Date.String())
	assert.Equal(t, "2024-02-02", logs[1].Date.String())
	assert.Equal(t, "2024-02-03", logs[2].Date.String())
}

func TestSQLite_ListHabits_OrderedByCreationThenID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1", "sam")

	older := time.Unix(1000, 0).UTC()
	newer := time.Unix(2000, 0).UTC()
	seedHabit(t, s, "u1", "b", "B", newer)
	seedHabit(t, s, "u1", "c", "C", older)
	seedHabit(t, s, "u1", "a", "A", older)

	habits, err := s.ListHabits(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, habits, 3)
	assert.Equal(t, []string{"a", "c", "b"}, []string{habits[0].ID, habits[1].ID, habits[2].ID})
}

// =============================================================================
// CASCADES
// =============================================================================

func TestSQLite_DeleteHabit_CascadesLogs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1", "sam")
	seedHabit(t, s, "u1", "h1", "Run", time.Now().UTC())
	_, err := s.UpsertLog(ctx, logFor(t, "u1", "h1", "a", "2024-02-01", true, 1))
	require.NoError(t, err)

	require.NoError(t, s.DeleteHabit(ctx, "h1"))

	_, err = s.GetHabit(ctx, "h1")
	assert.ErrorIs(t, err, habit.ErrNotFound)
	logs, err := s.ListCompletedLogsForHabit(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestSQLite_DeleteHabit_Absent_NotFound(t *testing.T) {
	assert.ErrorIs(t, newStore(t).DeleteHabit(context.Background(), "nope"), habit.ErrNotFound)
}

func TestSQLite_DeleteUser_CascadesHabitsRoutinesLogs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1", "sam")
	seedHabit(t, s, "u1", "h1", "Run", time.Now().UTC())
	_, err := s.CreateRoutine(ctx, habit.Routine{
		ID: "r1", UserID: "u1", Name: "Morning", HabitIDs: []string{"h1"}, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	_, err = s.UpsertLog(ctx, logFor(t, "u1", "h1", "a", "2024-02-01", true, 1))
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, "u1"))

	habits, err := s.ListHabits(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, habits)
	routines, err := s.ListRoutines(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, routines)
	logs, err := s.ListCompletedLogs(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

// =============================================================================
// ROUTINES
// =============================================================================

func TestSQLite_Routine_RoundTripPreservesHabitOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1", "sam")

	_, err := s.CreateRoutine(ctx, habit.Routine{
		ID: "r1", UserID: "u1", Name: "Morning",
		HabitIDs: []string{"h3", "h1", "h2"}, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	routines, err := s.ListRoutines(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, routines, 1)
	assert.Equal(t, []string{"h3", "h1", "h2"}, routines[0].HabitIDs)
}

func TestSQLite_HydrateRoutines_DropsDeletedHabit(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1", "sam")
	seedHabit(t, s, "u1", "h1", "Run", time.Now().UTC())
	seedHabit(t, s, "u1", "h2", "Read", time.Now().UTC())
	_, err := s.CreateRoutine(ctx, habit.Routine{
		ID: "r1", UserID: "u1", Name: "Morning",
		HabitIDs: []string{"h2", "h1"}, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteHabit(ctx, "h2"))

	hydrated, err := s.HydrateRoutines(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, hydrated, 1)
	require.Len(t, hydrated[0].Habits, 1)
	assert.Equal(t, "h1", hydrated[0].Habits[0].ID)
}
