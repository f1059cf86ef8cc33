package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "xpeak", DefaultDBName), cfg.DBPath)
	assert.Equal(t, DefaultUserID, cfg.UserID)
	assert.Equal(t, DefaultSweepInterval, cfg.Habits.SweepInterval)
	assert.Equal(t, DefaultAI.Model, cfg.AI.Model)
	assert.Equal(t, DefaultAI.RequestsPerMinute, cfg.AI.RequestsPerMinute)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, DefaultServer.Addr, cfg.Server.Addr)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
user_id: alice
timezone: Europe/Berlin
habits:
  sweep_interval: 1h
ai:
  model: gemini-test
server:
  addr: ":9999"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("XPEAK_AI_API_KEY", "secret")
	t.Setenv("XPEAK_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.UserID)
	assert.Equal(t, time.Hour, cfg.Habits.SweepInterval)
	assert.Equal(t, "gemini-test", cfg.AI.Model)
	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XPEAK_TIMEZONE", "Mars/Olympus")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user_id: [unterminated"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
