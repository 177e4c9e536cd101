/*
hydrate.go - Routine-to-habit join

PURPOSE:
  Resolves a routine's habit ids into full habit records at read time.
  A reference to a deleted habit is silently dropped from the hydrated
  list rather than erroring; deleting a habit is not required to scrub
  every routine that mentions it. Both store implementations delegate
  here so the drop policy cannot drift.
*/
package habit

// HydrateRoutines joins routines to habit records, preserving the
// routine's habit id order and dropping dangling references.
func HydrateRoutines(routines []Routine, habits []Habit) []HydratedRoutine {
	byID := make(map[string]Habit, len(habits))
	for _, h := range habits {
		byID[h.ID] = h
	}

	hydrated := make([]HydratedRoutine, 0, len(routines))
	for _, r := range routines {
		resolved := make([]Habit, 0, len(r.HabitIDs))
		for _, id := range r.HabitIDs {
			if h, ok := byID[id]; ok {
				resolved = append(resolved, h)
			}
		}
		hydrated = append(hydrated, HydratedRoutine{
			ID:        r.ID,
			UserID:    r.UserID,
			Name:      r.Name,
			Habits:    resolved,
			CreatedAt: r.CreatedAt,
		})
	}
	return hydrated
}
