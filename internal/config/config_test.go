package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, "config.ini", cfg.SettingsFile)
	assert.Equal(t, "SimBrief Renamer", cfg.NotifyTitle)
	assert.True(t, cfg.RestartOnSave)
	assert.Equal(t, 3*time.Second, cfg.Timing.DebounceTTL)
	assert.Equal(t, 2*time.Second, cfg.Timing.DispatchDelay)
	assert.Equal(t, 3*time.Second, cfg.Timing.AutoStartDelay)
	assert.Equal(t, 10*time.Second, cfg.Timing.SweepDelay)
	assert.Equal(t, 24*time.Hour, cfg.Timing.SweepInterval)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SETTINGS_FILE", "other.ini")
	t.Setenv("DISPATCH_DELAY", "500ms")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "other.ini", cfg.SettingsFile)
	assert.Equal(t, 500*time.Millisecond, cfg.Timing.DispatchDelay)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sbrenamer.yaml")
	content := "env: prod\nsettings_file: /tmp/renamer.ini\ntiming:\n  debounce_ttl: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, "/tmp/renamer.ini", cfg.SettingsFile)
	assert.Equal(t, 5*time.Second, cfg.Timing.DebounceTTL)
	assert.Equal(t, 2*time.Second, cfg.Timing.DispatchDelay)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestFetchConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "env.yaml")

	assert.Equal(t, "flag.yaml", FetchConfigPath("flag.yaml"))
	assert.Equal(t, "env.yaml", FetchConfigPath(""))
}
