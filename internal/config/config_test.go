package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTimeout)
	assert.Equal(t, time.Hour, cfg.SessionCleanupInterval)
	assert.Equal(t, 3*time.Second, cfg.AuthLookupTimeout)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("SESSION_TIMEOUT_HOURS", "1")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "test-secret", cfg.SessionSecret)
	assert.Equal(t, time.Hour, cfg.SessionTimeout)
	assert.Equal(t, "debug", cfg.GetGinMode())
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid in development", func(t *testing.T) {
		cfg := Load()
		require.NoError(t, cfg.Validate())
	})

	t.Run("rejects empty secret", func(t *testing.T) {
		cfg := Load()
		cfg.SessionSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects default secret in production", func(t *testing.T) {
		cfg := Load()
		cfg.Environment = "production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("accepts custom secrets in production", func(t *testing.T) {
		cfg := Load()
		cfg.Environment = "production"
		cfg.SessionSecret = "a-real-secret"
		cfg.AuditSecret = "a-real-audit-secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects default audit secret in production", func(t *testing.T) {
		cfg := Load()
		cfg.Environment = "production"
		cfg.SessionSecret = "a-real-secret"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive session timeout", func(t *testing.T) {
		cfg := Load()
		cfg.SessionTimeout = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects out of range port", func(t *testing.T) {
		cfg := Load()
		cfg.ServerPort = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestGetGinMode(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	assert.Equal(t, "release", cfg.GetGinMode())

	cfg.LogLevel = "debug"
	assert.Equal(t, "debug", cfg.GetGinMode())
}
