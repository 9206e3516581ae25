// Package events provides the in-process event channel between the daemon
// and the overlay front-end.
package events

import (
	"log/slog"
	"sync"
)

// Event names.
const (
	// ToggleWindow asks the front-end to toggle the overlay (no payload).
	ToggleWindow = "toggle-window"
	// NoteChanged reports that the note file was modified outside the overlay.
	NoteChanged = "note-changed"
)

// Handler handles an event.
type Handler func()

// Bus is a synchronous publish/subscribe event bus.
// Handlers run on the emitting goroutine, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

// NewBus creates a new Bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers handler for events named name.
func (b *Bus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// Emit delivers the event to every subscribed handler.
func (b *Bus) Emit(name string) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug("event dropped: no subscribers", "event", name)
		return
	}

	b.logger.Debug("emitting event", "event", name, "subscribers", len(handlers))
	for _, h := range handlers {
		h()
	}
}
