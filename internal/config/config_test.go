package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresBackend(t *testing.T) {
	t.Setenv("PRACTICE_JWT_SECRET", "s3cret")
	t.Setenv("PRACTICE_BACKEND_URL", "")
	t.Setenv("PRACTICE_API_KEY", "anon")
	require.NoError(t, os.Unsetenv("PRACTICE_BACKEND_URL"))

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_URL")

	t.Setenv("PRACTICE_BACKEND_URL", "  ")
	_, err = Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("PRACTICE_BACKEND_URL", "postgres://localhost/practice")
	t.Setenv("PRACTICE_API_KEY", "anon")
	t.Setenv("PRACTICE_JWT_SECRET", "")

	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoad_DefaultsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yml := "server:\n  port: 9090\noutbox:\n  poll_interval: 250ms\nredis:\n  url: redis://localhost:6379/0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600))

	t.Setenv("PRACTICE_BACKEND_URL", "postgres://localhost/practice")
	t.Setenv("PRACTICE_API_KEY", "anon")
	t.Setenv("PRACTICE_JWT_SECRET", "s3cret")
	t.Setenv("PRACTICE_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/practice", cfg.Backend.URL)
	assert.Equal(t, "anon", cfg.Backend.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Outbox.PollInterval)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 12*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 5, cfg.Outbox.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Outbox.ClaimTimeout)
}
