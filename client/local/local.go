/*
Package local implements the facade over an on-device store.

PURPOSE:
  The local backend: every client.Client operation executes directly
  against a habit.Store (in-memory or SQLite) with no network. Record
  construction, validation and analytics are the same shared functions
  the networked backend uses, so the two are interchangeable.

SESSION:
  Single session held in-process. SignIn/SignUp set it; other calls
  fail with ErrUnauthorized until one succeeds. The issued token is
  real but only returned for shape parity; the local backend trusts
  its own session state.
*/
package local

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/loopline/habit-engine/auth"
	"github.com/loopline/habit-engine/client"
	"github.com/loopline/habit-engine/habit"
)

// Client is the store-backed facade implementation.
type Client struct {
	store  habit.Store
	tokens *auth.TokenIssuer

	// Now supplies "today" for streak computation. Overridable in tests;
	// defaults to habit.Today.
	Now func() habit.Date

	userID string
}

var _ client.Client = (*Client)(nil)

// New creates a local backend over the given store.
func New(store habit.Store, tokens *auth.TokenIssuer) *Client {
	return &Client{store: store, tokens: tokens, Now: habit.Today}
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func (c *Client) SignUp(ctx context.Context, creds client.Credentials) (client.Session, error) {
	if err := creds.Validate(); err != nil {
		return client.Session{}, err
	}
	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		return client.Session{}, err
	}
	user, err := c.store.CreateUser(ctx, habit.User{
		ID:           uuid.NewString(),
		Username:     creds.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return client.Session{}, err
	}
	return c.openSession(user)
}

func (c *Client) SignIn(ctx context.Context, creds client.Credentials) (client.Session, error) {
	user, err := c.store.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		// Absent user and wrong password are indistinguishable.
		return client.Session{}, habit.ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, creds.Password); err != nil {
		return client.Session{}, err
	}
	return c.openSession(user)
}

func (c *Client) openSession(user habit.User) (client.Session, error) {
	token, err := c.tokens.Issue(user.ID)
	if err != nil {
		return client.Session{}, err
	}
	c.userID = user.ID
	return client.Session{Token: token, User: user}, nil
}

func (c *Client) session() (string, error) {
	if c.userID == "" {
		return "", habit.ErrUnauthorized
	}
	return c.userID, nil
}

// =============================================================================
// HABITS
// =============================================================================

func (c *Client) CreateHabit(ctx context.Context, req client.NewHabit) (habit.Habit, error) {
	uid, err := c.session()
	if err != nil {
		return habit.Habit{}, err
	}
	record, err := req.Habit(uid, uuid.NewString(), time.Now().UTC())
	if err != nil {
		return habit.Habit{}, err
	}
	return c.store.CreateHabit(ctx, record)
}

func (c *Client) ListHabits(ctx context.Context) ([]habit.Habit, error) {
	uid, err := c.session()
	if err != nil {
		return nil, err
	}
	return c.store.ListHabits(ctx, uid)
}

func (c *Client) DeleteHabit(ctx context.Context, habitID string) error {
	uid, err := c.session()
	if err != nil {
		return err
	}
	// Ownership check doubles as existence check.
	record, err := c.store.GetHabit(ctx, habitID)
	if err != nil || record.UserID != uid {
		return habit.ErrNotFound
	}
	return c.store.DeleteHabit(ctx, habitID)
}

// =============================================================================
// LOGS
// =============================================================================

func (c *Client) UpsertLog(ctx context.Context, entry client.LogEntry) (habit.Log, error) {
	uid, err := c.session()
	if err != nil {
		return habit.Log{}, err
	}
	record, err := entry.Log(ctx, c.store, uid, uuid.NewString())
	if err != nil {
		return habit.Log{}, err
	}
	return c.store.UpsertLog(ctx, record)
}

func (c *Client) ListLogsForDate(ctx context.Context, date habit.Date) ([]habit.Log, error) {
	uid, err := c.session()
	if err != nil {
		return nil, err
	}
	return c.store.ListLogsForDate(ctx, uid, date)
}

// =============================================================================
// ROUTINES
// =============================================================================

func (c *Client) CreateRoutine(ctx context.Context, req client.NewRoutine) (habit.Routine, error) {
	uid, err := c.session()
	if err != nil {
		return habit.Routine{}, err
	}
	record, err := req.Routine(uid, uuid.NewString(), time.Now().UTC())
	if err != nil {
		return habit.Routine{}, err
	}
	return c.store.CreateRoutine(ctx, record)
}

func (c *Client) ListRoutines(ctx context.Context) ([]habit.HydratedRoutine, error) {
	uid, err := c.session()
	if err != nil {
		return nil, err
	}
	return c.store.HydrateRoutines(ctx, uid)
}

func (c *Client) DeleteRoutine(ctx context.Context, routineID string) error {
	if _, err := c.session(); err != nil {
		return err
	}
	return c.store.DeleteRoutine(ctx, routineID)
}

// =============================================================================
// STATS
// =============================================================================

func (c *Client) Heatmap(ctx context.Context) (map[string]int, error) {
	uid, err := c.session()
	if err != nil {
		return nil, err
	}
	return habit.HeatmapForUser(ctx, c.store, uid)
}

func (c *Client) Streaks(ctx context.Context) ([]habit.HabitStreak, error) {
	uid, err := c.session()
	if err != nil {
		return nil, err
	}
	return habit.StreaksForUser(ctx, c.store, uid, c.Now())
}
