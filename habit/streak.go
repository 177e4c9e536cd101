/*
streak.go - Consecutive-day streak calculator

PURPOSE:
  Derives current and longest consecutive-day streaks from a habit's
  completed log dates. Implemented once as a pure fold over an ordered
  sequence of dates; both backends delegate here, so they cannot
  diverge.

ALGORITHM:
  Walk the ascending dates keeping a running run length. A gap of
  exactly one calendar day extends the run; anything else closes it
  against the longest seen and starts a new run of length 1. The final
  run is also folded in. The current streak is the final run's length
  only if the most recent date is today or yesterday (one-day grace
  period); a lapsed streak is 0 regardless of its length.

  Gaps are integer day-number subtractions (see date.go). Duration
  division is deliberately not used here: it rounds wrong across
  daylight-saving transitions.
*/
package habit

import "context"

// Streak is the pair of streak counters for one habit.
// Longest >= Current always.
type Streak struct {
	Current int
	Longest int
}

// HabitStreak is the per-habit streak view returned by the stats
// surface of both backends.
type HabitStreak struct {
	HabitID       string `json:"habitId"`
	Name          string `json:"name"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
}

// ComputeStreak folds ascending completed dates into streak counters.
// An empty input yields {0, 0}.
func ComputeStreak(dates []Date, today Date) Streak {
	if len(dates) == 0 {
		return Streak{}
	}

	longest := 0
	run := 1
	for i := 1; i < len(dates); i++ {
		if dates[i].Sub(dates[i-1]) == 1 {
			run++
			continue
		}
		if run > longest {
			longest = run
		}
		run = 1
	}
	if run > longest {
		longest = run
	}

	// One-day grace period: the final run only counts as current while
	// its last date is today or yesterday.
	current := 0
	last := dates[len(dates)-1]
	if gap := today.Sub(last); gap == 0 || gap == 1 {
		current = run
	}

	return Streak{Current: current, Longest: longest}
}

// StreaksForUser computes the streak view for every habit of a user,
// preserving habit listing order. Habits with no completed logs yield
// zero streaks.
func StreaksForUser(ctx context.Context, s Store, userID string, today Date) ([]HabitStreak, error) {
	habits, err := s.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	streaks := make([]HabitStreak, 0, len(habits))
	for _, h := range habits {
		logs, err := s.ListCompletedLogsForHabit(ctx, userID, h.ID)
		if err != nil {
			return nil, err
		}
		dates := make([]Date, len(logs))
		for i, l := range logs {
			dates[i] = l.Date
		}
		st := ComputeStreak(dates, today)
		streaks = append(streaks, HabitStreak{
			HabitID:       h.ID,
			Name:          h.Name,
			CurrentStreak: st.Current,
			LongestStreak: st.Longest,
		})
	}
	return streaks, nil
}
