// Package store provides the in-memory Store implementation.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/loopline/habit-engine/habit"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	users    map[string]habit.User
	habits   map[string]habit.Habit
	routines map[string]habit.Routine
	logs     map[logKey]habit.Log
}

// logKey is the upsert key: at most one log per (user, habit, date).
type logKey struct {
	UserID  string
	HabitID string
	Date    string
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]habit.User),
		habits:   make(map[string]habit.Habit),
		routines: make(map[string]habit.Routine),
		logs:     make(map[logKey]habit.Log),
	}
}

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) CreateUser(_ context.Context, u habit.User) (habit.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return habit.User{}, habit.ErrUserExists
		}
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) GetUser(_ context.Context, id string) (habit.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return habit.User{}, habit.ErrNotFound
	}
	return u, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (habit.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return habit.User{}, habit.ErrNotFound
}

// DeleteUser cascades the user's habits, routines and logs.
func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return habit.ErrNotFound
	}
	delete(m.users, id)
	for hid, h := range m.habits {
		if h.UserID == id {
			delete(m.habits, hid)
		}
	}
	for rid, r := range m.routines {
		if r.UserID == id {
			delete(m.routines, rid)
		}
	}
	for k := range m.logs {
		if k.UserID == id {
			delete(m.logs, k)
		}
	}
	return nil
}

// =============================================================================
// HABITS
// =============================================================================

func (m *Memory) CreateHabit(_ context.Context, h habit.Habit) (habit.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.habits[h.ID] = h
	return h, nil
}

func (m *Memory) GetHabit(_ context.Context, id string) (habit.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.habits[id]
	if !ok {
		return habit.Habit{}, habit.ErrNotFound
	}
	return h, nil
}

func (m *Memory) ListHabits(_ context.Context, userID string) ([]habit.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	habits := make([]habit.Habit, 0)
	for _, h := range m.habits {
		if h.UserID == userID {
			habits = append(habits, h)
		}
	}
	sortHabits(habits)
	return habits, nil
}

// DeleteHabit cascades the habit's logs. Routines keep the dangling id;
// hydration drops it.
func (m *Memory) DeleteHabit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.habits[id]; !ok {
		return habit.ErrNotFound
	}
	delete(m.habits, id)
	m.deleteLogsForHabitLocked(id)
	return nil
}

// sortHabits orders by creation time then id, matching the TEXT
// ordering the SQLite store gets from ORDER BY created_at, id.
func sortHabits(habits []habit.Habit) {
	sort.Slice(habits, func(i, j int) bool {
		ci := habits[i].CreatedAt.UTC().Format(time.RFC3339)
		cj := habits[j].CreatedAt.UTC().Format(time.RFC3339)
		if ci != cj {
			return ci < cj
		}
		return habits[i].ID < habits[j].ID
	})
}

// =============================================================================
// LOGS
// =============================================================================

// UpsertLog writes or overwrites the record keyed by (user, habit, date).
// An overwrite keeps the original record ID.
func (m *Memory) UpsertLog(_ context.Context, l habit.Log) (habit.Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := logKey{UserID: l.UserID, HabitID: l.HabitID, Date: l.Date.String()}
	if existing, ok := m.logs[k]; ok {
		l.ID = existing.ID
	}
	m.logs[k] = l
	return l, nil
}

func (m *Memory) ListCompletedLogs(_ context.Context, userID string) ([]habit.Log, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := make([]habit.Log, 0)
	for _, l := range m.logs {
		if l.UserID == userID && l.Completed {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

func (m *Memory) ListCompletedLogsForHabit(_ context.Context, userID, habitID string) ([]habit.Log, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := make([]habit.Log, 0)
	for _, l := range m.logs {
		if l.UserID == userID && l.HabitID == habitID && l.Completed {
			logs = append(logs, l)
		}
	}
	// Ascending by date: the streak calculator depends on this.
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date.Before(logs[j].Date)
	})
	return logs, nil
}

func (m *Memory) ListLogsForDate(_ context.Context, userID string, date habit.Date) ([]habit.Log, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := make([]habit.Log, 0)
	for _, l := range m.logs {
		if l.UserID == userID && l.Date.Equal(date) {
			logs = append(logs, l)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].HabitID < logs[j].HabitID
	})
	return logs, nil
}

func (m *Memory) DeleteLogsForHabit(_ context.Context, habitID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteLogsForHabitLocked(habitID)
	return nil
}

func (m *Memory) deleteLogsForHabitLocked(habitID string) {
	for k := range m.logs {
		if k.HabitID == habitID {
			delete(m.logs, k)
		}
	}
}

// =============================================================================
// ROUTINES
// =============================================================================

func (m *Memory) CreateRoutine(_ context.Context, r habit.Routine) (habit.Routine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.routines[r.ID] = r
	return r, nil
}

func (m *Memory) ListRoutines(_ context.Context, userID string) ([]habit.Routine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	routines := make([]habit.Routine, 0)
	for _, r := range m.routines {
		if r.UserID == userID {
			routines = append(routines, r)
		}
	}
	sort.Slice(routines, func(i, j int) bool {
		ci := routines[i].CreatedAt.UTC().Format(time.RFC3339)
		cj := routines[j].CreatedAt.UTC().Format(time.RFC3339)
		if ci != cj {
			return ci < cj
		}
		return routines[i].ID < routines[j].ID
	})
	return routines, nil
}

func (m *Memory) DeleteRoutine(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routines[id]; !ok {
		return habit.ErrNotFound
	}
	delete(m.routines, id)
	return nil
}

func (m *Memory) HydrateRoutines(ctx context.Context, userID string) ([]habit.HydratedRoutine, error) {
	routines, err := m.ListRoutines(ctx, userID)
	if err != nil {
		return nil, err
	}
	habits, err := m.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	return habit.HydrateRoutines(routines, habits), nil
}
