package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	cfg, err := Load(filepath.Join(dataDir, "missing.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, StorageFile, cfg.Storage.Driver)
	assert.Equal(t, time.Hour, cfg.Push.TokenTTL)
	assert.Equal(t, "/firebase-messaging-sw.js", cfg.Worker.ScriptPath)
	assert.True(t, cfg.Notifications.Enabled)
	assert.Equal(t, filepath.Join(dataDir, "state.json"), cfg.StatePath())
	assert.False(t, cfg.NATSEnabled())
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: https://api.example.com
  user_id: "42"
  timeout: 3s
push:
  token_ttl: 15m
storage:
  driver: memory
nats:
  url: nats://localhost:4222
notifications:
  enabled: false
  mute:
    - /auctions/**
worker:
  listen: ""
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Backend.URL)
	assert.Equal(t, "42", cfg.Backend.UserID)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Push.TokenTTL)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.True(t, cfg.NATSEnabled())
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, []string{"/auctions/**"}, cfg.Notifications.Mute)

	// Zero values fall back to defaults.
	assert.Equal(t, "127.0.0.1:7420", cfg.Worker.Listen)
	assert.Equal(t, 10*time.Second, cfg.Delivery.Timeout)
	assert.Equal(t, "herald.push", cfg.NATS.SubjectPrefix)
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("HERALD_TEST_TOKEN", "secret")
	path := writeConfig(t, "backend:\n  auth_token: ${HERALD_TEST_TOKEN}\n")

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Backend.AuthToken)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "backend: [\n")

	_, err := Load(path, t.TempDir())
	assert.ErrorContains(t, err, "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "missing data dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: "data directory",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "sqlite" },
			wantErr: "storage.driver",
		},
		{
			name:    "redis without url",
			mutate:  func(c *Config) { c.Storage.Driver = StorageRedis },
			wantErr: "redis_url",
		},
		{
			name: "redis with url",
			mutate: func(c *Config) {
				c.Storage.Driver = StorageRedis
				c.Storage.RedisURL = "redis://localhost:6379/0"
			},
		},
		{
			name:    "negative max items",
			mutate:  func(c *Config) { c.Notifications.MaxItems = -1 },
			wantErr: "max_items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
