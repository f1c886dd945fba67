package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("CODEFEND_DEV", "")
	dir := t.TempDir()

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.True(t, cfg.Log.JSON)
	assert.False(t, cfg.Log.Dev)
	assert.Equal(t, 3*24*time.Hour, cfg.LogMaxAge())
	assert.Equal(t, DefaultUpdaterPubkey, cfg.Updater.Pubkey)
	assert.Empty(t, cfg.Updater.Endpoints)
	assert.True(t, cfg.Notification.Enabled)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("CODEFEND_DEV", "")
	dir := t.TempDir()
	content := `
[log]
json = false
max_age_days = 7

[updater]
endpoints = ["https://updates.example.com/{{target}}/{{current_version}}", "  "]
timeout_seconds = 5

[devtools]
open_inspector = true

[notification]
enabled = false

[fs]
scopes = ["$APPDATA/exports", "/tmp"]

[shell]
allow = ["git", "nmap"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, 7*24*time.Hour, cfg.LogMaxAge())
	assert.Equal(t, []string{"https://updates.example.com/{{target}}/{{current_version}}"}, cfg.Updater.Endpoints)
	assert.Equal(t, 5*time.Second, cfg.UpdaterTimeout())
	assert.Equal(t, DefaultUpdaterPubkey, cfg.Updater.Pubkey)
	assert.True(t, cfg.Devtools.OpenInspector)
	assert.False(t, cfg.Notification.Enabled)
	assert.Equal(t, []string{filepath.Join(dir, "exports"), "/tmp"}, cfg.ExpandScopes())
	assert.Equal(t, []string{"git", "nmap"}, cfg.Shell.Allow)
}

func TestLoadFromInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CODEFEND_DEV", "")
	dir := t.TempDir()
	content := `
[log]
max_age_days = -1

[http]
timeout_seconds = 0
max_body_bytes = -5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, defaultLogMaxAgeDays, cfg.Log.MaxAgeDays)
	assert.Equal(t, defaultHTTPTimeout, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, int64(defaultHTTPMaxBodySize), cfg.HTTP.MaxBodyBytes)
}

func TestLoadFromMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[log\njson = "), 0644))

	_, err := LoadFrom(dir)
	assert.Error(t, err)
}

func TestDevModeFromEnv(t *testing.T) {
	t.Setenv("CODEFEND_DEV", "true")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Log.Dev)
	assert.True(t, cfg.Devtools.OpenInspector)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("CODEFEND_DEV", "")
	dir := filepath.Join(t.TempDir(), "nested")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	cfg.Notification.Enabled = false
	cfg.Updater.Endpoints = []string{"https://updates.example.com/latest.json"}
	require.NoError(t, cfg.Save())

	loaded, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.False(t, loaded.Notification.Enabled)
	assert.Equal(t, cfg.Updater.Endpoints, loaded.Updater.Endpoints)
}
