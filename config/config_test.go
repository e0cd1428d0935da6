package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/bracket-console/brackets"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func baseEnv() map[string]string {
	return map[string]string{
		"BACKEND_BASE_URL": "http://backend.local",
		"JWT_SECRET_KEY":   "secret",
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 10.0, cfg.BackendRequestsPerSecond)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSAllowOrigins)
	assert.Nil(t, cfg.Layout.Losers)
	assert.Nil(t, cfg.Layout.GrandFinals)
}

func TestFromEnv_Overrides(t *testing.T) {
	values := baseEnv()
	values["SERVER_PORT"] = "9000"
	values["BACKEND_TIMEOUT_SECONDS"] = "5"
	values["BACKEND_REQUESTS_PER_SECOND"] = "2.5"
	values["LOG_LEVEL"] = "debug"
	values["CORS_ALLOW_ORIGINS"] = "https://a.example, https://b.example"
	values["LOSERS_ROUND_SIZES"] = "2,2,1,1"
	values["R2_BUCKET_NAME"] = "brackets"

	cfg, err := FromEnv(env(values))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, 5*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 2.5, cfg.BackendRequestsPerSecond)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.Equal(t, brackets.RoundSizes{2, 2, 1, 1}, cfg.Layout.Losers)
	assert.Equal(t, "brackets", cfg.R2.BucketName)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing backend", "BACKEND_BASE_URL", ""},
		{"missing secret", "JWT_SECRET_KEY", ""},
		{"bad port", "SERVER_PORT", "http"},
		{"port out of range", "SERVER_PORT", "70000"},
		{"zero timeout", "BACKEND_TIMEOUT_SECONDS", "0"},
		{"negative rate", "BACKEND_REQUESTS_PER_SECOND", "-1"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad round sizes", "LOSERS_ROUND_SIZES", "2,x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := baseEnv()
			values[tt.key] = tt.val
			_, err := FromEnv(env(values))
			assert.Error(t, err)
		})
	}
}
