// Package notify presents desktop notifications on behalf of quicknote.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/quicknote/internal/config"
	"github.com/jmylchreest/quicknote/internal/model"
	"github.com/jmylchreest/quicknote/internal/platform"
)

// Sender is the platform notification subsystem.
type Sender interface {
	// Available reports whether notifications can currently be shown.
	Available(ctx context.Context) (bool, error)

	// Send displays the notification and returns the platform's id for it.
	Send(ctx context.Context, req model.NotificationRequest) (uint32, error)
}

// Dispatcher shows one notification per Notify call. There is no retry and
// no feedback about user interaction.
type Dispatcher struct {
	mu     sync.RWMutex
	cfg    *config.Config
	sender Sender
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher reading identity settings from cfg.
func NewDispatcher(cfg *config.Config, sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Dispatcher{
		cfg:    cfg,
		sender: sender,
		logger: logger,
	}
}

// UpdateConfig replaces the configuration used for subsequent notifications.
func (d *Dispatcher) UpdateConfig(cfg *config.Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
}

// Request builds the notification request for title and body from the current configuration.
func (d *Dispatcher) Request(title, body string) model.NotificationRequest {
	d.mu.RLock()
	cfg := d.cfg
	d.mu.RUnlock()

	timeout := int32(-1)
	if cfg.Notifications.Timeout > 0 {
		timeout = cfg.Notifications.Timeout.Milliseconds()
	}

	return model.NotificationRequest{
		Identifier: cfg.App.Identifier,
		AppName:    cfg.App.Name,
		Title:      title,
		Body:       body,
		Icon:       cfg.Notifications.Icon,
		TimeoutMs:  timeout,
	}
}

// Notify shows a notification with title and body.
func (d *Dispatcher) Notify(ctx context.Context, title, body string) error {
	if d.sender == nil {
		return fmt.Errorf("%w: %w", model.ErrPlatform, platform.ErrNotificationsUnavailable)
	}

	available, err := d.sender.Available(ctx)
	if err != nil {
		return fmt.Errorf("%w: query notification service: %w", model.ErrPlatform, err)
	}
	if !available {
		return fmt.Errorf("%w: %w", model.ErrPlatform, platform.ErrNotificationsUnavailable)
	}

	req := d.Request(title, body)
	id, err := d.sender.Send(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: notification rejected: %w", model.ErrPlatform, err)
	}

	d.logger.Debug("notification sent", "id", id, "identifier", req.Identifier, "title", title)
	return nil
}
