/*
date.go - Calendar-day value type

PURPOSE:
  A Date is one calendar day, the atomic unit of logging and aggregation.
  The canonical form everywhere (storage, wire, heatmap keys) is the
  string "YYYY-MM-DD" with no time-of-day and no timezone offset.

DAY ARITHMETIC:
  Gaps between dates are computed by integer day-number subtraction,
  never by dividing a wall-clock duration. A millisecond difference
  between two local midnights is 23 or 25 hours across a DST shift,
  so duration-based day counts are off by one exactly when streaks
  matter. Day numbers make the subtraction exact by construction.

SEE ALSO:
  - streak.go: consumes ordered Dates
  - heatmap.go: uses Date.String() as the aggregation key
*/
package habit

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-day format.
const DateLayout = "2006-01-02"

// Date is a calendar day. The zero Date is invalid.
type Date struct {
	t time.Time // midnight UTC, day granularity only
}

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the canonical "YYYY-MM-DD" form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q (want YYYY-MM-DD)", ErrValidation, s)
	}
	return Date{t: t}, nil
}

// Today returns the current calendar day in local time.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// DayNumber returns the number of days since the Unix epoch.
// Dates are pinned to midnight UTC, so the division is exact and a
// subtraction of two day numbers is an exact calendar-day gap.
func (d Date) DayNumber() int {
	return int(d.t.Unix() / 86400)
}

// Sub returns the calendar-day gap d - other.
func (d Date) Sub(other Date) int {
	return d.DayNumber() - other.DayNumber()
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// MarshalJSON encodes the canonical string form.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts the canonical string form.
func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: date must be a JSON string", ErrValidation)
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
