package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/timeoff-request/internal/config"
)

func env(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv(env(nil))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Empty(t, cfg.EndpointURL)
	assert.True(t, cfg.QuotesEnabled)
	assert.Zero(t, cfg.RequestTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := config.FromEnv(env(map[string]string{
		"TIMEOFF_ENDPOINT_URL":    "  https://script.google.com/macros/s/abc/exec ",
		"PORT":                    "9090",
		"DB_PATH":                 "timeoff.db",
		"TIMEOFF_QUOTES":          "false",
		"TIMEOFF_QUOTES_FILE":     "quotes.yaml",
		"TIMEOFF_REQUEST_TIMEOUT": "15s",
		"TIMEOFF_TOKEN_TTL":       "30m",
		"TIMEOFF_TOKEN_CAPACITY":  "10",
		"LOG_LEVEL":               "debug",
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://script.google.com/macros/s/abc/exec", cfg.EndpointURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "timeoff.db", cfg.DBPath)
	assert.False(t, cfg.QuotesEnabled)
	assert.Equal(t, "quotes.yaml", cfg.QuotesFile)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.TokenCapacity)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestFromEnv_Invalid(t *testing.T) {
	for _, key := range []string{"TIMEOFF_QUOTES", "TIMEOFF_REQUEST_TIMEOUT", "TIMEOFF_TOKEN_TTL", "TIMEOFF_TOKEN_CAPACITY", "LOG_LEVEL"} {
		t.Run(key, func(t *testing.T) {
			_, err := config.FromEnv(env(map[string]string{key: "not-a-value"}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
