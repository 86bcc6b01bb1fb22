package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, cfg.Debug)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Trace)
	assert.Equal(t, 16, cfg.MaxAutoChained)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("FSM_DEBUG", "true")
	t.Setenv("FSM_LOG_LEVEL", "WARN")
	t.Setenv("FSM_LOG_FORMAT", "json")
	t.Setenv("FSM_TRACE", "true")
	t.Setenv("FSM_MAX_AUTO", "3")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Trace)
	assert.Equal(t, 3, cfg.MaxAutoChained)
}

func TestLoadConfigDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FSM_MAX_AUTO=7\n"), 0o600))
	// registers the restore, then unsets so the file value is not shadowed
	t.Setenv("FSM_MAX_AUTO", "")
	require.NoError(t, os.Unsetenv("FSM_MAX_AUTO"))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxAutoChained)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("FSM_LOG_FORMAT", "xml")
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorIs(t, err, ErrParsingConfig)

	t.Setenv("FSM_LOG_FORMAT", "text")
	t.Setenv("FSM_MAX_AUTO", "many")
	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorIs(t, err, ErrParsingConfig)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(Config{LogLevel: slog.LevelWarn, LogFormat: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger = newLogger(Config{LogLevel: slog.LevelWarn, LogFormat: "text", Debug: true}, &buf)
	logger.Debug("diagnostic")
	assert.Contains(t, buf.String(), "msg=diagnostic")
}
