// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 5000, cfg.ScriptTimeout)
	assert.Empty(t, cfg.HistoryDB)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("COURSELOOM_LOG_LEVEL", "debug")
	t.Setenv("COURSELOOM_LOG_FORMAT", "json")
	t.Setenv("COURSELOOM_HISTORY_DB", "/tmp/history.db")
	t.Setenv("COURSELOOM_SCRIPT_TIMEOUT_MS", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/tmp/history.db", cfg.HistoryDB)
	assert.Equal(t, 250, cfg.ScriptTimeout)
}

func TestLoadInvalidNumber(t *testing.T) {
	t.Setenv("COURSELOOM_SCRIPT_TIMEOUT_MS", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
