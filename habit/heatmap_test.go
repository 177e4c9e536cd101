package habit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopline/habit-engine/habit"
	"github.com/loopline/habit-engine/habit/store"
)

func TestBuildHeatmap_CountsCompletionsPerDay(t *testing.T) {
	// GIVEN: Two habits completed on 2024-03-01 and one on 2024-03-02
	ctx := context.Background()
	s := store.NewMemory()

	user := seedUser(t, s, "u1")
	h1 := seedHabit(t, s, user.ID, "Run", time.Unix(100, 0))
	h2 := seedHabit(t, s, user.ID, "Read", time.Unix(200, 0))

	seedLog(t, s, user.ID, h1.ID, day("2024-03-01"), true)
	seedLog(t, s, user.ID, h2.ID, day("2024-03-01"), true)
	seedLog(t, s, user.ID, h1.ID, day("2024-03-02"), true)

	// WHEN: Building the heatmap
	heatmap, err := habit.HeatmapForUser(ctx, s, user.ID)
	require.NoError(t, err)

	// THEN: Exactly the days with completions appear
	assert.Equal(t, map[string]int{"2024-03-01": 2, "2024-03-02": 1}, heatmap)
}

func TestBuildHeatmap_ZeroDaysAbsent_IncompleteIgnored(t *testing.T) {
	heatmap := habit.BuildHeatmap([]habit.Log{
		{HabitID: "h1", Date: day("2024-03-01"), Completed: true},
		{HabitID: "h2", Date: day("2024-03-03"), Completed: false},
	})

	assert.Equal(t, map[string]int{"2024-03-01": 1}, heatmap)
	_, present := heatmap["2024-03-03"]
	assert.False(t, present, "un-completed days must be absent, not zero")
}

func TestBuildHeatmap_SumEqualsCompletedLogCount(t *testing.T) {
	// The sum of all heatmap values equals the number of completed logs.
	logs := []habit.Log{
		{HabitID: "h1", Date: day("2024-03-01"), Completed: true},
		{HabitID: "h2", Date: day("2024-03-01"), Completed: true},
		{HabitID: "h1", Date: day("2024-03-02"), Completed: true},
		{HabitID: "h3", Date: day("2024-03-05"), Completed: true},
		{HabitID: "h1", Date: day("2024-03-06"), Completed: false},
	}

	heatmap := habit.BuildHeatmap(logs)

	sum := 0
	for _, n := range heatmap {
		sum += n
	}
	assert.Equal(t, 4, sum)
}

func TestBuildHeatmap_Empty(t *testing.T) {
	assert.Empty(t, habit.BuildHeatmap(nil))
}

func TestHydrateRoutines_DropsDanglingReferences(t *testing.T) {
	// GIVEN: A routine referencing one live and one deleted habit
	habits := []habit.Habit{{ID: "h1", Name: "Run"}}
	routines := []habit.Routine{{ID: "r1", Name: "Morning", HabitIDs: []string{"h1", "h-deleted"}}}

	// WHEN: Hydrating
	hydrated := habit.HydrateRoutines(routines, habits)

	// THEN: The dangling reference is dropped, not errored
	require.Len(t, hydrated, 1)
	require.Len(t, hydrated[0].Habits, 1)
	assert.Equal(t, "h1", hydrated[0].Habits[0].ID)
}
