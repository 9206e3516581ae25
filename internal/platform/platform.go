// Package platform defines the desktop capabilities quicknote depends on.
//
// Concrete implementations live with the toolkit that provides them (GTK in
// internal/display, D-Bus portals in internal/hotkey). Everything here is an
// interface so components receive their platform explicitly and tests can
// substitute fakes.
package platform

import (
	"context"
	"errors"
)

// Window is the overlay window as seen by the hotkey controller.
// Implementations must be safe to call from any goroutine.
type Window interface {
	IsVisible() (bool, error)
	IsFocused() (bool, error)
	Show() error
	Hide() error
	Focus() error
}

// ShortcutRegistrar registers system-wide key combinations.
type ShortcutRegistrar interface {
	// Register binds trigger (e.g. "Alt+Space") to callback. The callback is
	// invoked on the registrar's own delivery goroutine.
	Register(ctx context.Context, trigger string, callback func()) error

	// Close releases every registration.
	Close() error
}

// EventEmitter delivers named, payload-less events to the front-end.
type EventEmitter interface {
	Emit(name string)
}

// Handle bundles the platform capabilities shared by the components.
// It is constructed once by the host application and passed in explicitly.
type Handle struct {
	Window    Window
	Shortcuts ShortcutRegistrar
	Events    EventEmitter
}

// Platform errors. All of them wrap model.ErrPlatform at the call sites that return them.
var (
	// ErrNoWindow is returned when the main window handle is unavailable.
	ErrNoWindow = errors.New("main window unavailable")
	// ErrWindowGone is returned when the window was destroyed.
	ErrWindowGone = errors.New("window has been destroyed")
	// ErrShortcutRejected is returned when the platform refuses a shortcut binding.
	ErrShortcutRejected = errors.New("shortcut registration rejected")
	// ErrNotificationsUnavailable is returned when no notification service is present.
	ErrNotificationsUnavailable = errors.New("notification service unavailable")
)
