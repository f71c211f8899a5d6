package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at a temp dir and clears the env overrides so
// tests never see the developer's real config.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TASKDESK_DATA", "")
	t.Setenv("TASKDESK_LOG_FILE", "")
	t.Setenv("TASKDESK_LOG_LEVEL", "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, DefaultDirName, DefaultDataName), cfg.DataFile)
	assert.Equal(t, filepath.Join(home, DefaultDirName, DefaultLogName), cfg.LogFile)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, DefaultDirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(
		"data_file = \"/tmp/custom.json\"\nlog_level = \"debug\"\n",
	), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.json", cfg.DataFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unset keys keep their defaults.
	assert.Equal(t, filepath.Join(dir, DefaultLogName), cfg.LogFile)
}

func TestEnvOverridesFile(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, DefaultDirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(
		"log_level = \"debug\"\n",
	), 0644))
	t.Setenv("TASKDESK_LOG_LEVEL", "error")
	t.Setenv("TASKDESK_DATA", "/tmp/env.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "/tmp/env.json", cfg.DataFile)
}

func TestLoadBadConfigFile(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, DefaultDirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not toml ["), 0644))

	_, err := Load()
	assert.Error(t, err)
}
