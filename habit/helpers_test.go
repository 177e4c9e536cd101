package habit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/loopline/habit-engine/habit"
)

// Seed helpers shared by the analytics tests. They write through the
// Store contract so the tests exercise the same paths the backends use.

func seedUser(t *testing.T, s habit.Store, username string) habit.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), habit.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "x",
		CreatedAt:    time.Unix(0, 0).UTC(),
	})
	require.NoError(t, err)
	return u
}

func seedHabit(t *testing.T, s habit.Store, userID, name string, createdAt time.Time) habit.Habit {
	t.Helper()
	h, err := s.CreateHabit(context.Background(), habit.Habit{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Category:    "test",
		TargetType:  habit.TargetCount,
		TargetValue: decimal.NewFromInt(1),
		IsActive:    true,
		CreatedAt:   createdAt.UTC(),
	})
	require.NoError(t, err)
	return h
}

func seedLog(t *testing.T, s habit.Store, userID, habitID string, d habit.Date, completed bool) habit.Log {
	t.Helper()
	l, err := s.UpsertLog(context.Background(), habit.Log{
		ID:        uuid.NewString(),
		UserID:    userID,
		HabitID:   habitID,
		Date:      d,
		Completed: completed,
		Progress:  decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	return l
}
