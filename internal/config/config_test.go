package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 5*time.Minute, cfg.Access.RoleCacheTTL)
	assert.Equal(t, "@daily", cfg.Scheduler.ArchiveSpec)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  address: ":9090"
database:
  driver: memory
jwt:
  secret: file-secret
  expiration: 30m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	t.Run("file values override defaults", func(t *testing.T) {
		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Address)
		assert.Equal(t, "memory", cfg.Database.Driver)
		assert.Equal(t, "file-secret", cfg.JWT.Secret)
		assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "env-secret")
		t.Setenv("EMAIL_API_KEY", "re_123")
		t.Setenv("AI_API_KEY", "gm_456")
		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "env-secret", cfg.JWT.Secret)
		assert.Equal(t, "re_123", cfg.Email.APIKey)
		assert.Equal(t, "gm_456", cfg.AI.APIKey)
	})
}

func TestLoadConfig_BadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
