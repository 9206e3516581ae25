package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// internalNotifyTimeout bounds a single self-notification.
const internalNotifyTimeout = 3 * time.Second

// Notifier sends desktop notifications. *notify.Dispatcher satisfies it.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// InternalNotifier tells the user about quicknoted's own events (config
// reloads, failed saves). Identical notifications are rate limited by key.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	notifier Notifier

	// Rate limiting
	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	now            func() time.Time

	enabled bool
}

// NewInternalNotifier creates an InternalNotifier sending through notifier.
func NewInternalNotifier(notifier Notifier, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		notifier:       notifier,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		enabled:        true,
	}
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends a notification unless one with the same key was sent within
// the minimum interval. Returns whether a notification was attempted.
// Send failures are logged, never returned: the daemon keeps running.
func (n *InternalNotifier) Notify(key, title, body string) bool {
	n.mu.Lock()
	if !n.enabled || n.notifier == nil {
		n.mu.Unlock()
		n.logger.Debug("internal notification skipped", "key", key, "title", title)
		return false
	}

	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "title", title)
		return false
	}
	n.lastNotifyTime[key] = now
	notifier := n.notifier
	n.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), internalNotifyTimeout)
	defer cancel()

	n.logger.Debug("sending internal notification", "key", key, "title", title)
	if err := notifier.Notify(ctx, title, body); err != nil {
		n.logger.Warn("internal notification failed", "key", key, "error", err)
	}
	return true
}

// NotifyConfigReloaded reports a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration Reloaded",
		"quicknote configuration has been reloaded.")
}

// NotifyConfigError reports a config file that failed validation.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration Error",
		"Failed to reload configuration: "+err.Error())
}

// NotifyNoteError reports a failed note load or save from the overlay.
func (n *InternalNotifier) NotifyNoteError(err error) {
	n.Notify("note-error", "Note Error", err.Error())
}
