package daemon

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/jmylchreest/quicknote/internal/config"
)

// DefaultPollInterval is how often the config file is checked.
const DefaultPollInterval = time.Second

// Config sections reported by ChangedSections.
const (
	SectionApp           = "app"
	SectionHotkey        = "hotkey"
	SectionWindow        = "window"
	SectionNotifications = "notifications"
	SectionClipboard     = "clipboard"
)

// ReloadFunc receives a successfully reloaded config and the sections that
// differ from the previous one.
type ReloadFunc func(cfg *config.Config, changed []string)

// ConfigWatcher polls quicknote.toml and reloads it when its content changes.
// A config that fails to load is reported and the previous one stays current.
type ConfigWatcher struct {
	path     string
	logger   *slog.Logger
	interval time.Duration

	mu       sync.RWMutex
	current  *config.Config
	checksum uint64
	onReload ReloadFunc
	onError  func(err error)

	stop chan struct{}
	done chan struct{}
}

// NewConfigWatcher creates a watcher for the config file at path.
func NewConfigWatcher(path string, logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		path:     path,
		logger:   logger,
		interval: DefaultPollInterval,
	}
}

// SetPollInterval changes the poll interval. It takes effect on the next Start.
func (w *ConfigWatcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = interval
}

// SetReloadCallback sets the callback for successful reloads.
// It runs on the watcher goroutine.
func (w *ConfigWatcher) SetReloadCallback(fn ReloadFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// SetErrorCallback sets the callback for configs that fail to load.
func (w *ConfigWatcher) SetErrorCallback(fn func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Start records the current file state and begins polling. initial is the
// config the daemon started with. Calling Start twice is a no-op.
func (w *ConfigWatcher) Start(ctx context.Context, initial *config.Config) error {
	w.mu.Lock()
	if w.stop != nil {
		w.mu.Unlock()
		return nil
	}
	w.current = initial
	w.checksum, _ = w.fingerprint()
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	stop, done, interval := w.stop, w.done, w.interval
	w.mu.Unlock()

	go w.poll(ctx, interval, stop, done)

	w.logger.Debug("config watcher started", "path", w.path, "interval", interval)
	return nil
}

// Stop ends polling and waits for the poll goroutine to exit.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	stop, done := w.stop, w.done
	w.stop, w.done = nil, nil
	w.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	w.logger.Debug("config watcher stopped")
}

// CurrentConfig returns the last config that loaded successfully.
func (w *ConfigWatcher) CurrentConfig() *config.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *ConfigWatcher) poll(ctx context.Context, interval time.Duration, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// fingerprint returns the content hash of the file.
func (w *ConfigWatcher) fingerprint() (uint64, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}

// check reloads the config when its content changed. Editors that rewrite
// the file without changing it do not trigger a reload.
func (w *ConfigWatcher) check() {
	sum, err := w.fingerprint()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Debug("failed to read config file", "path", w.path, "error", err)
		}
		return
	}

	w.mu.Lock()
	if sum == w.checksum {
		w.mu.Unlock()
		return
	}
	w.checksum = sum
	previous := w.current
	onReload, onError := w.onReload, w.onError
	w.mu.Unlock()

	cfg, err := config.LoadConfig(w.path)
	if err != nil {
		w.logger.Warn("config changed but failed to load, keeping previous", "path", w.path, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	changed := ChangedSections(previous, cfg)

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path, "changed", changed)
	if onReload != nil {
		onReload(cfg, changed)
	}
}

// ChangedSections lists the top-level config sections that differ between
// prev and next. A nil prev is compared as the zero config.
func ChangedSections(prev, next *config.Config) []string {
	if next == nil {
		return nil
	}
	if prev == nil {
		prev = &config.Config{}
	}

	var changed []string
	add := func(name string, a, b any) {
		if !reflect.DeepEqual(a, b) {
			changed = append(changed, name)
		}
	}
	add(SectionApp, prev.App, next.App)
	add(SectionHotkey, prev.Hotkey, next.Hotkey)
	add(SectionWindow, prev.Window, next.Window)
	add(SectionNotifications, prev.Notifications, next.Notifications)
	add(SectionClipboard, prev.Clipboard, next.Clipboard)
	return changed
}
