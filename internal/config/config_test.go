package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, AppID, cfg.App.Identifier)
	assert.Equal(t, DefaultAppName, cfg.App.Name)
	assert.Equal(t, ToggleModeDirect, cfg.ToggleMode())
	assert.Equal(t, 480, cfg.Window.Width)
	assert.Equal(t, 320, cfg.Window.Height)
	assert.True(t, cfg.Window.LayerShell)
	assert.Equal(t, int32(5000), cfg.Notifications.Timeout.Milliseconds())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/quicknote.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quicknote.toml")

	content := `
[app]
identifier = "app.id"
name = "Notes"

[hotkey]
mode = "event"

[window]
width = 600
height = 400
layer_shell = false

[notifications]
icon = "dialog-information"
timeout = "1m30s"

[clipboard]
command = "wl-copy --primary"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "app.id", cfg.App.Identifier)
	assert.Equal(t, "Notes", cfg.App.Name)
	assert.Equal(t, ToggleModeEvent, cfg.ToggleMode())
	assert.Equal(t, 600, cfg.Window.Width)
	assert.Equal(t, 400, cfg.Window.Height)
	assert.False(t, cfg.Window.LayerShell)
	assert.Equal(t, "dialog-information", cfg.Notifications.Icon)
	assert.Equal(t, Duration(90*time.Second), cfg.Notifications.Timeout)
	assert.Equal(t, "wl-copy --primary", cfg.Clipboard.Command)
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quicknote.toml")

	content := `
[app]
identifier = "app.id"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "app.id", cfg.App.Identifier)

	// Unchanged fields keep defaults
	assert.Equal(t, DefaultAppName, cfg.App.Name)
	assert.Equal(t, ToggleModeDirect, cfg.ToggleMode())
	assert.Equal(t, DefaultWindowWidth, cfg.Window.Width)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quicknote.toml")

	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown mode", "[hotkey]\nmode = \"sideways\"\n"},
		{"empty identifier", "[app]\nidentifier = \"\"\n"},
		{"tiny window", "[window]\nwidth = 10\n"},
		{"bad duration", "[notifications]\ntimeout = \"soon\"\n"},
		{"negative timeout", "[notifications]\ntimeout = \"-1s\"\n"},
		{"timeout overflows int32 ms", "[notifications]\ntimeout = \"600h\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "quicknote.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_ValidateTimeoutBound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Notifications.Timeout = Duration(MaxNotifyTimeout)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int32(math.MaxInt32), cfg.Notifications.Timeout.Milliseconds())

	cfg.Notifications.Timeout = Duration(MaxNotifyTimeout + time.Millisecond)
	assert.Error(t, cfg.Validate())
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "quicknote.toml")

	cfg := DefaultConfig()
	cfg.Hotkey.Mode = string(ToggleModeEvent)
	cfg.Notifications.Timeout = Duration(2 * time.Second)

	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ToggleModeEvent, loaded.ToggleMode())
	assert.Equal(t, Duration(2*time.Second), loaded.Notifications.Timeout)
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	dir, err := AppConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/io.github.jmylchreest.quicknote", dir)

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/io.github.jmylchreest.quicknote/quicknote.toml", path)

	notes, err := NotesPath()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/io.github.jmylchreest.quicknote/notes.json", notes)
}
