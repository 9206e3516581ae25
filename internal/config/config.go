// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/quicknote/internal/model"
)

// AppID is the application identifier. It names the per-application config
// directory and is the default identifier for desktop notifications.
const AppID = "io.github.jmylchreest.quicknote"

// Default configuration values.
const (
	DefaultAppName          = "Quick Note"
	DefaultWindowWidth      = 480
	DefaultWindowHeight     = 320
	DefaultNotificationIcon = "accessories-text-editor"
	DefaultNotifyTimeout    = 5 * time.Second
	// MaxNotifyTimeout is the largest timeout the notification protocol's
	// int32 millisecond field can carry.
	MaxNotifyTimeout = math.MaxInt32 * time.Millisecond
	configFileName          = "quicknote.toml"
)

// ToggleMode selects how a hotkey activation toggles the overlay.
type ToggleMode string

const (
	// ToggleModeDirect makes the hotkey controller show, focus and hide the window itself.
	ToggleModeDirect ToggleMode = "direct"
	// ToggleModeEvent makes the controller emit a toggle-window event for the front-end.
	ToggleModeEvent ToggleMode = "event"
)

// ValidToggleModes returns all valid toggle mode values.
func ValidToggleModes() []ToggleMode {
	return []ToggleMode{ToggleModeDirect, ToggleModeEvent}
}

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1m30s", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int32 {
	return int32(time.Duration(d).Milliseconds())
}

// Config represents the quicknote configuration.
// Loaded from <config dir>/io.github.jmylchreest.quicknote/quicknote.toml
type Config struct {
	App           AppConfig           `toml:"app"`
	Hotkey        HotkeyConfig        `toml:"hotkey"`
	Window        WindowConfig        `toml:"window"`
	Notifications NotificationsConfig `toml:"notifications"`
	Clipboard     ClipboardConfig     `toml:"clipboard"`
}

// AppConfig identifies the application to the desktop.
type AppConfig struct {
	Identifier string `toml:"identifier"` // Desktop entry / bundle identifier
	Name       string `toml:"name"`       // Shown as the notification app name
}

// HotkeyConfig controls the global hotkey behaviour.
type HotkeyConfig struct {
	Mode string `toml:"mode"` // "direct" or "event"
}

// WindowConfig contains overlay window settings.
type WindowConfig struct {
	Width      int  `toml:"width"`
	Height     int  `toml:"height"`
	LayerShell bool `toml:"layer_shell"` // Use wlr-layer-shell overlay layer when available
}

// NotificationsConfig contains desktop notification settings.
type NotificationsConfig struct {
	Icon    string   `toml:"icon"`
	Timeout Duration `toml:"timeout"` // "0" = notification server default
}

// ClipboardConfig contains clipboard integration settings.
type ClipboardConfig struct {
	Command string `toml:"command"` // Empty = system clipboard (wl-copy, xclip or xsel)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Identifier: AppID,
			Name:       DefaultAppName,
		},
		Hotkey: HotkeyConfig{
			Mode: string(ToggleModeDirect),
		},
		Window: WindowConfig{
			Width:      DefaultWindowWidth,
			Height:     DefaultWindowHeight,
			LayerShell: true,
		},
		Notifications: NotificationsConfig{
			Icon:    DefaultNotificationIcon,
			Timeout: Duration(DefaultNotifyTimeout),
		},
	}
}

// AppConfigDir returns the per-application config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func AppConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: unable to determine config directory: %w", model.ErrPlatform, err)
	}
	return filepath.Join(configDir, AppID), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := AppConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// NotesPath returns the path to the persisted note.
func NotesPath() (string, error) {
	dir, err := AppConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, model.NotesFileName), nil
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.App.Identifier == "" {
		return errors.New("app.identifier must not be empty")
	}

	validMode := false
	for _, m := range ValidToggleModes() {
		if c.Hotkey.Mode == string(m) {
			validMode = true
			break
		}
	}
	if !validMode {
		return fmt.Errorf("invalid hotkey mode %q, must be one of: %v", c.Hotkey.Mode, ValidToggleModes())
	}

	if c.Window.Width < 100 || c.Window.Width > 4000 {
		return fmt.Errorf("window width must be between 100 and 4000, got %d", c.Window.Width)
	}
	if c.Window.Height < 50 || c.Window.Height > 4000 {
		return fmt.Errorf("window height must be between 50 and 4000, got %d", c.Window.Height)
	}

	if c.Notifications.Timeout < 0 {
		return fmt.Errorf("notification timeout must not be negative, got %s", time.Duration(c.Notifications.Timeout))
	}
	if time.Duration(c.Notifications.Timeout) > MaxNotifyTimeout {
		return fmt.Errorf("notification timeout must be at most %s, got %s", MaxNotifyTimeout, time.Duration(c.Notifications.Timeout))
	}

	return nil
}

// ToggleMode returns the configured toggle mode.
func (c *Config) ToggleMode() ToggleMode {
	return ToggleMode(c.Hotkey.Mode)
}
