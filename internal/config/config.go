// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Defaults used when the corresponding variable is unset.
const (
	DefaultHTTPAddr = ":8080"
	DefaultDBDriver = "sqlite"
	DefaultDBPath   = "./data/splitit.db"
	DefaultTokenTTL = 24 * time.Hour
)

// Config holds everything the server binary needs to start.
type Config struct {
	// HTTPAddr is the listen address, e.g. ":8080".
	HTTPAddr string

	// DBDriver selects the store: "sqlite" or "postgres".
	DBDriver string

	// DBPath is the SQLite database file (sqlite driver only).
	DBPath string

	// DatabaseURL is the Postgres connection string (postgres driver only).
	DatabaseURL string

	// JWTSecret signs session tokens. Required.
	JWTSecret string

	// TokenTTL is how long session tokens stay valid.
	TokenTTL time.Duration
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:    getEnv("HTTP_ADDR", DefaultHTTPAddr),
		DBDriver:    getEnv("DB_DRIVER", DefaultDBDriver),
		DBPath:      getEnv("DB_PATH", DefaultDBPath),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    DefaultTokenTTL,
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
		}
		cfg.TokenTTL = d
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required with DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
