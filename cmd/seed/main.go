/*
main.go - Demo history seeder

PURPOSE:
  Creates a demo user with a few habits, a routine and ~90 days of
  completion history, writing through the facade so either backend can
  be seeded. Useful for exercising the heatmap and streak views with
  believable data.

FLAGS:
  -url       Seed the networked backend at this base URL
  -db        Seed a local SQLite database at this path
             (exactly one of -url / -db must be given)
  -username  Demo username (default: demo)
  -password  Demo password (default: demo1234)
  -days      History window in days (default: 90)

SEMANTICS:
  The history load is best-effort and sequential: a failure stops the
  run and leaves the prefix committed, matching the store contract.
*/
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/loopline/habit-engine/auth"
	"github.com/loopline/habit-engine/client"
	"github.com/loopline/habit-engine/client/local"
	"github.com/loopline/habit-engine/client/remote"
	"github.com/loopline/habit-engine/config"
	"github.com/loopline/habit-engine/habit"
	"github.com/loopline/habit-engine/store/sqlite"
)

type seedHabit struct {
	req client.NewHabit
	// completion chance per day, tuned so streaks and gaps both appear
	rate float64
}

var seedHabits = []seedHabit{
	{req: client.NewHabit{Name: "Morning run", Category: "fitness", TargetType: "time", TargetValue: decimal.NewFromInt(30)}, rate: 0.7},
	{req: client.NewHabit{Name: "Read", Category: "learning", TargetType: "time", TargetValue: decimal.NewFromInt(20)}, rate: 0.85},
	{req: client.NewHabit{Name: "Drink water", Category: "health", TargetType: "count", TargetValue: decimal.NewFromInt(8)}, rate: 0.95},
	{req: client.NewHabit{Name: "Meditate", Category: "health", TargetType: "time", TargetValue: decimal.NewFromInt(10)}, rate: 0.5},
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	url := flag.String("url", "", "base URL of a running server to seed")
	dbPath := flag.String("db", "", "SQLite database path to seed directly")
	username := flag.String("username", "demo", "demo username")
	password := flag.String("password", "demo1234", "demo password")
	days := flag.Int("days", 90, "history window in days")
	flag.Parse()

	if (*url == "") == (*dbPath == "") {
		log.Error("exactly one of -url or -db must be given")
		os.Exit(1)
	}

	var backend client.Client
	if *url != "" {
		backend = remote.New(*url)
	} else {
		store, err := sqlite.New(*dbPath)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		tokens, err := auth.NewTokenIssuer([]byte(config.DevFallbackSecret), time.Hour)
		if err != nil {
			log.Error("failed to initialize token issuer", "error", err)
			os.Exit(1)
		}
		backend = local.New(store, tokens)
	}

	if err := seed(context.Background(), backend, *username, *password, *days, log); err != nil {
		log.Error("seeding failed, prefix may be committed", "error", err)
		os.Exit(1)
	}
	log.Info("seeding complete", "username", *username, "days", *days)
}

func seed(ctx context.Context, backend client.Client, username, password string, days int, log *slog.Logger) error {
	creds := client.Credentials{Username: username, Password: password}
	if _, err := backend.SignUp(ctx, creds); err != nil {
		// Re-seeding an existing demo user is fine.
		if !habit.IsClientError(err) {
			return err
		}
		if _, err := backend.SignIn(ctx, creds); err != nil {
			return err
		}
		log.Info("demo user already exists, signing in")
	}

	habits := make([]habit.Habit, 0, len(seedHabits))
	for _, sh := range seedHabits {
		h, err := backend.CreateHabit(ctx, sh.req)
		if err != nil {
			return err
		}
		habits = append(habits, h)
	}

	if _, err := backend.CreateRoutine(ctx, client.NewRoutine{
		Name:     "Morning routine",
		HabitIDs: []string{habits[0].ID, habits[1].ID},
	}); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(42))
	today := habit.Today()
	for offset := days - 1; offset >= 0; offset-- {
		date := today.AddDays(-offset)
		for i, sh := range seedHabits {
			if rng.Float64() > sh.rate {
				continue
			}
			if _, err := backend.UpsertLog(ctx, client.LogEntry{
				HabitID:   habits[i].ID,
				Date:      date,
				Completed: true,
				Progress:  sh.req.TargetValue,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
