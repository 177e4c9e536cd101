// Package config loads server configuration from flags, environment
// variables and an optional .env file.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DevFallbackSecret is the development-only token secret. It is used
// only when HABIT_JWT_SECRET is absent, and only because SecretIsFallback
// makes the substitution explicit and loggable. Production deployments
// must set HABIT_JWT_SECRET.
const DevFallbackSecret = "habit-engine-dev-secret"

// Config holds all server configuration.
type Config struct {
	Port   int
	DBPath string

	// JWTSecret signs session tokens. SecretIsFallback records that the
	// development fallback was substituted for a missing secret; callers
	// are expected to log it loudly.
	JWTSecret        string
	SecretIsFallback bool
	TokenTTL         time.Duration
}

// Load reads configuration. Precedence: flags, then environment
// (including a .env file if present), then defaults.
//
//	-port            HTTP server port          (HABIT_PORT, default 8080)
//	-db              SQLite database path      (HABIT_DB, default habits.db)
//	HABIT_JWT_SECRET token signing secret      (dev fallback if unset)
//	HABIT_TOKEN_TTL  token validity, minutes   (default 10080 = 7 days)
func Load(args []string) (*Config, error) {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnvInt("HABIT_PORT", 8080),
		DBPath:    getEnv("HABIT_DB", "habits.db"),
		JWTSecret: os.Getenv("HABIT_JWT_SECRET"),
		TokenTTL:  time.Duration(getEnvInt("HABIT_TOKEN_TTL", 7*24*60)) * time.Minute,
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (\":memory:\" for in-memory)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DevFallbackSecret
		cfg.SecretIsFallback = true
	}

	return cfg, cfg.Validate()
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
