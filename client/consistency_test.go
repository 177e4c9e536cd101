package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopline/habit-engine/api"
	"github.com/loopline/habit-engine/auth"
	"github.com/loopline/habit-engine/client"
	"github.com/loopline/habit-engine/client/local"
	"github.com/loopline/habit-engine/client/remote"
	"github.com/loopline/habit-engine/habit"
	"github.com/loopline/habit-engine/habit/store"
)

// The backend contract: a caller running the same operations against the
// local backend and the networked backend must observe the same records,
// the same analytics and the same error classes. Each test here runs once
// per backend through this table.
func backends(t *testing.T, today habit.Date) map[string]client.Client {
	t.Helper()
	issuer, err := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	loc := local.New(store.NewMemory(), issuer)
	loc.Now = func() habit.Date { return today }

	h := api.NewHandler(store.NewMemory(), issuer, nil)
	h.Now = func() habit.Date { return today }
	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)

	return map[string]client.Client{
		"local":  loc,
		"remote": remote.New(srv.URL),
	}
}

func mustDate(t *testing.T, s string) habit.Date {
	t.Helper()
	d, err := habit.ParseDate(s)
	require.NoError(t, err)
	return d
}

func signUp(t *testing.T, c client.Client) client.Session {
	t.Helper()
	session, err := c.SignUp(context.Background(), client.Credentials{
		Username: "sam", Password: "hunter22",
	})
	require.NoError(t, err)
	return session
}

func addHabit(t *testing.T, c client.Client, name string) habit.Habit {
	t.Helper()
	created, err := c.CreateHabit(context.Background(), client.NewHabit{
		Name: name, Category: "health", TargetType: "count",
		TargetValue: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	return created
}

func logDay(t *testing.T, c client.Client, habitID, date string) {
	t.Helper()
	_, err := c.UpsertLog(context.Background(), client.LogEntry{
		HabitID: habitID, Date: mustDate(t, date),
		Completed: true, Progress: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
}

// =============================================================================
// SHARED SCENARIO
// =============================================================================

func TestBackends_SameScenario_SameAnalytics(t *testing.T) {
	today := mustDate(t, "2024-03-10")
	results := map[string]map[string]int{}
	streakResults := map[string]habit.Streak{}

	for name, c := range backends(t, today) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			signUp(t, c)
			run := addHabit(t, c, "Run")

			// Three-day run ending yesterday, plus an earlier island.
			for _, date := range []string{"2024-03-01", "2024-03-07", "2024-03-08", "2024-03-09"} {
				logDay(t, c, run.ID, date)
			}
			// A second write for the same day must not inflate anything.
			logDay(t, c, run.ID, "2024-03-08")

			heatmap, err := c.Heatmap(ctx)
			require.NoError(t, err)
			results[name] = heatmap

			streaks, err := c.Streaks(ctx)
			require.NoError(t, err)
			require.Len(t, streaks, 1)
			streakResults[name] = habit.Streak{
				Current: streaks[0].CurrentStreak,
				Longest: streaks[0].LongestStreak,
			}
		})
	}

	want := map[string]int{
		"2024-03-01": 1, "2024-03-07": 1, "2024-03-08": 1, "2024-03-09": 1,
	}
	assert.Equal(t, want, results["local"])
	assert.Equal(t, want, results["remote"])
	assert.Equal(t, habit.Streak{Current: 3, Longest: 3}, streakResults["local"])
	assert.Equal(t, streakResults["local"], streakResults["remote"])
}

func TestBackends_DayView_IdenticalRecords(t *testing.T) {
	today := mustDate(t, "2024-03-10")

	for name, c := range backends(t, today) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			signUp(t, c)
			run := addHabit(t, c, "Run")
			logDay(t, c, run.ID, "2024-03-01")

			logs, err := c.ListLogsForDate(ctx, mustDate(t, "2024-03-01"))
			require.NoError(t, err)
			require.Len(t, logs, 1)
			assert.Equal(t, run.ID, logs[0].HabitID)
			assert.Equal(t, "2024-03-01", logs[0].Date.String())
			assert.True(t, logs[0].Completed)

			empty, err := c.ListLogsForDate(ctx, mustDate(t, "2024-03-02"))
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestBackends_RoutineHydration_DropsDeletedHabit(t *testing.T) {
	today := mustDate(t, "2024-03-10")

	for name, c := range backends(t, today) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			signUp(t, c)
			run := addHabit(t, c, "Run")
			read := addHabit(t, c, "Read")

			_, err := c.CreateRoutine(ctx, client.NewRoutine{
				Name: "Morning", HabitIDs: []string{read.ID, run.ID},
			})
			require.NoError(t, err)
			require.NoError(t, c.DeleteHabit(ctx, run.ID))

			routines, err := c.ListRoutines(ctx)
			require.NoError(t, err)
			require.Len(t, routines, 1)
			require.Len(t, routines[0].Habits, 1)
			assert.Equal(t, read.ID, routines[0].Habits[0].ID)
		})
	}
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

func TestBackends_SameErrorClasses(t *testing.T) {
	today := mustDate(t, "2024-03-10")

	for name, c := range backends(t, today) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// Unauthenticated reads classify as unauthorized.
			_, err := c.ListHabits(ctx)
			assert.ErrorIs(t, err, habit.ErrUnauthorized)

			// Wrong credentials classify as invalid credentials.
			_, err = c.SignIn(ctx, client.Credentials{Username: "nobody", Password: "pw"})
			assert.ErrorIs(t, err, habit.ErrInvalidCredentials)

			signUp(t, c)

			// Duplicate username classifies as user exists.
			_, err = c.SignUp(ctx, client.Credentials{Username: "sam", Password: "other"})
			assert.ErrorIs(t, err, habit.ErrUserExists)

			// Logging against an unknown habit classifies as validation.
			_, err = c.UpsertLog(ctx, client.LogEntry{
				HabitID: "no-such-habit", Date: mustDate(t, "2024-03-01"),
				Completed: true, Progress: decimal.NewFromInt(1),
			})
			assert.ErrorIs(t, err, habit.ErrValidation)

			// Deleting an absent habit classifies as not found.
			assert.ErrorIs(t, c.DeleteHabit(ctx, "no-such-habit"), habit.ErrNotFound)
		})
	}
}
