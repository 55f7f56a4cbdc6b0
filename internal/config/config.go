// Package config reads runtime settings from the environment, after loading
// an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// EndpointURL is the deployed Apps Script web app. Empty means the form
	// reports a configuration error on submit.
	EndpointURL string
	Port        string
	// DBPath enables the attempt journal when non-empty.
	DBPath string

	QuotesEnabled bool
	QuotesFile    string

	// RequestTimeout of zero leaves the HTTP transport defaults in place.
	RequestTimeout time.Duration

	TokenTTL      time.Duration
	TokenCapacity int

	LogLevel slog.Level
}

func Default() Config {
	return Config{
		Port:          "8080",
		QuotesEnabled: true,
		TokenTTL:      12 * time.Hour,
		TokenCapacity: 4096,
		LogLevel:      slog.LevelInfo,
	}
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("error loading .env file", "err", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, falling back to defaults for unset
// variables.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	cfg.EndpointURL = strings.TrimSpace(getenv("TIMEOFF_ENDPOINT_URL"))
	cfg.DBPath = getenv("DB_PATH")
	cfg.QuotesFile = getenv("TIMEOFF_QUOTES_FILE")
	if v := getenv("PORT"); v != "" {
		cfg.Port = v
	}

	var err error
	if v := getenv("TIMEOFF_QUOTES"); v != "" {
		if cfg.QuotesEnabled, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("TIMEOFF_QUOTES: %w", err)
		}
	}
	if v := getenv("TIMEOFF_REQUEST_TIMEOUT"); v != "" {
		if cfg.RequestTimeout, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("TIMEOFF_REQUEST_TIMEOUT: %w", err)
		}
	}
	if v := getenv("TIMEOFF_TOKEN_TTL"); v != "" {
		if cfg.TokenTTL, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("TIMEOFF_TOKEN_TTL: %w", err)
		}
	}
	if v := getenv("TIMEOFF_TOKEN_CAPACITY"); v != "" {
		if cfg.TokenCapacity, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("TIMEOFF_TOKEN_CAPACITY: %w", err)
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	return cfg, nil
}

// NewLogger returns a text logger on stderr at the configured level.
func (c Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}
