/*
main.go - Server entry point

PURPOSE:
  Starts the networked backend: SQLite store, token issuer, chi router,
  graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (flags, env, optional .env)
  2. Initialize SQLite store
  3. Create token issuer and API handler
  4. Start server with graceful shutdown

CONFIGURATION:
  -port              HTTP server port (default: 8080)
  -db                SQLite database path (default: habits.db)
                     Use ":memory:" for an in-memory database
  HABIT_JWT_SECRET   Token signing secret. When absent, a development
                     fallback is substituted and logged loudly; never
                     run production without the secret set.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the database, exit.

SEE ALSO:
  - api/server.go: router configuration
  - config/config.go: configuration loading
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loopline/habit-engine/api"
	"github.com/loopline/habit-engine/auth"
	"github.com/loopline/habit-engine/config"
	"github.com/loopline/habit-engine/store/sqlite"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.SecretIsFallback {
		log.Warn("HABIT_JWT_SECRET not set, using development fallback secret; do not run this in production")
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Error("failed to initialize database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		log.Error("failed to initialize token issuer", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(store, tokens, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", server.Addr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
