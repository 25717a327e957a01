package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	CutMin             int
	CutMax             int
	ScratchRestore     bool
	SessionIdleTimeout time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:headcount.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		CutMin:             envIntOr("CUT_MIN", 1),
		CutMax:             envIntOr("CUT_MAX", 5),
		ScratchRestore:     envBoolOr("SCRATCH_RESTORE", true),
		SessionIdleTimeout: time.Duration(envIntOr("SESSION_IDLE_TIMEOUT", 30)) * time.Minute,
	}
}

// Validate checks the configuration for values that would break the server at
// runtime. A cut range that can swallow the whole deck is rejected here so
// individual sessions never have to deal with it.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.CutMin < 0 {
		return fmt.Errorf("CUT_MIN must be >= 0, got %d", c.CutMin)
	}
	if c.CutMax < c.CutMin {
		return fmt.Errorf("CUT_MAX (%d) must be >= CUT_MIN (%d)", c.CutMax, c.CutMin)
	}
	if c.CutMax > 51 {
		return fmt.Errorf("CUT_MAX must be <= 51 so at least one card remains, got %d", c.CutMax)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive, got %v", c.SessionIdleTimeout)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
