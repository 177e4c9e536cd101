/*
types.go - Domain records

PURPOSE:
  The persisted record shapes shared by every backend. JSON tags here
  ARE the wire contract: the HTTP backend serialises these types and
  the remote client deserialises into them, so both backends return
  byte-identical shapes by construction.

OWNERSHIP:
  User owns Habits, Routines and Logs. Routines reference habits by id
  only; they are hydrated at read time (see hydrate.go). Logs reference
  habits by id, never embed them.

SEE ALSO:
  - store.go: persistence contract over these records
  - hydrate.go: routine id -> habit record resolution
*/
package habit

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TARGET TYPE
// =============================================================================

// TargetType says what a habit's target value measures.
type TargetType string

const (
	// TargetCount targets a number of repetitions per day.
	TargetCount TargetType = "count"
	// TargetTime targets a number of minutes per day.
	TargetTime TargetType = "time"
)

// ParseTargetType validates a wire-form target type.
func ParseTargetType(s string) (TargetType, error) {
	switch TargetType(s) {
	case TargetCount, TargetTime:
		return TargetType(s), nil
	default:
		return "", &ValidationError{Field: "targetType", Message: "must be \"count\" or \"time\""}
	}
}

// =============================================================================
// RECORDS
// =============================================================================

// User owns all other records. PasswordHash never crosses the wire.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Habit is a recurring activity with a daily target.
type Habit struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	TargetType  TargetType      `json:"targetType"`
	TargetValue decimal.Decimal `json:"targetValue"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Validate checks the creation-time constraints.
func (h Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if _, err := ParseTargetType(string(h.TargetType)); err != nil {
		return err
	}
	if !h.TargetValue.IsPositive() {
		return &ValidationError{Field: "targetValue", Message: "must be positive"}
	}
	return nil
}

// Log records whether (and how much of) a habit was done on one day.
// At most one Log exists per (UserID, HabitID, Date); a second write
// for the same key overwrites Completed/Progress and keeps the key
// and the original ID.
type Log struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	HabitID   string          `json:"habitId"`
	Date      Date            `json:"date"`
	Completed bool            `json:"completed"`
	Progress  decimal.Decimal `json:"progress"`
}

// Routine groups habits by id. Grouping only: no analytics implications.
type Routine struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	HabitIDs  []string  `json:"habitIds"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidateRoutine checks the creation-time constraints.
func (r Routine) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	return nil
}

// HydratedRoutine is a Routine with habit ids resolved to records.
// References to deleted habits are dropped, not errored.
type HydratedRoutine struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Habits    []Habit   `json:"habits"`
	CreatedAt time.Time `json:"createdAt"`
}
