package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/quicknote/internal/config"
	"github.com/jmylchreest/quicknote/internal/events"
	"github.com/jmylchreest/quicknote/internal/model"
	"github.com/jmylchreest/quicknote/internal/platform"
)

// ErrNotInitialized is returned by Toggle before Initialize succeeded.
var ErrNotInitialized = errors.New("hotkey controller not initialized")

// Controller owns the overlay window visibility state and the global
// activation shortcut.
type Controller struct {
	mu          sync.Mutex
	logger      *slog.Logger
	binding     Binding
	mode        config.ToggleMode
	handle      platform.Handle
	state       model.VisibilityState
	initialized bool

	// State changes are queued and delivered in order by one goroutine.
	qmu      sync.Mutex
	listener StateListener
	queue    []model.VisibilityState
	wake     chan struct{}
	quit     chan struct{}
	started  bool
	closed   bool
}

// StateListener receives state changes in the order they happened, on the
// controller's delivery goroutine.
type StateListener func(state model.VisibilityState)

// NewController creates a controller for the default binding.
func NewController(mode config.ToggleMode, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	b, err := ParseBinding(DefaultBinding)
	if err != nil {
		panic(err) // DefaultBinding is a constant
	}
	return &Controller{
		logger:  logger,
		binding: b,
		mode:    mode,
		state:   model.Hidden,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
}

// Binding returns the activation shortcut.
func (c *Controller) Binding() Binding {
	return c.binding
}

// Initialize hides the window and registers the activation shortcut.
// Any error is fatal to startup: the overlay cannot be summoned without it.
func (c *Controller) Initialize(ctx context.Context, handle platform.Handle) error {
	if handle.Window == nil {
		return fmt.Errorf("%w: %w", model.ErrPlatform, platform.ErrNoWindow)
	}
	if handle.Shortcuts == nil {
		return fmt.Errorf("%w: no shortcut registrar", model.ErrPlatform)
	}

	c.mu.Lock()
	if c.mode == config.ToggleModeEvent && handle.Events == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: event toggle mode requires an event emitter", model.ErrPlatform)
	}
	if err := handle.Window.Hide(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: failed to hide window: %w", model.ErrPlatform, err)
	}
	c.handle = handle
	c.setState(model.Hidden)
	c.initialized = true
	c.mu.Unlock()

	if err := handle.Shortcuts.Register(ctx, c.binding.String(), c.OnHotkeyActivated); err != nil {
		c.mu.Lock()
		c.initialized = false
		c.mu.Unlock()
		if errors.Is(err, model.ErrPlatform) {
			return fmt.Errorf("failed to register %s: %w", c.binding, err)
		}
		return fmt.Errorf("%w: failed to register %s: %w", model.ErrPlatform, c.binding, err)
	}

	c.logger.Info("global hotkey registered", "binding", c.binding.String(), "mode", string(c.mode))
	return nil
}

// OnHotkeyActivated is the shortcut callback. It runs on the registrar's
// delivery goroutine; failures abort the transition and are logged.
func (c *Controller) OnHotkeyActivated() {
	state, err := c.Toggle()
	if err != nil {
		c.logger.Warn("hotkey toggle failed", "error", err, "state", state.String())
		return
	}
	c.logger.Debug("hotkey toggled overlay", "state", state.String())
}

// Toggle performs one activation: a focused window is hidden, a hidden or
// unfocused window is shown and focused. In event mode the toggle-window
// event is emitted instead and the state is left to the front-end.
// Returns the resulting state.
func (c *Controller) Toggle() (model.VisibilityState, error) {
	c.mu.Lock()
	if !c.initialized {
		defer c.mu.Unlock()
		return c.state, ErrNotInitialized
	}

	if c.mode == config.ToggleModeEvent {
		// Handlers may call back into the controller.
		emitter, state := c.handle.Events, c.state
		c.mu.Unlock()
		emitter.Emit(events.ToggleWindow)
		return state, nil
	}
	defer c.mu.Unlock()

	current, err := c.observe()
	if err != nil {
		return c.state, err
	}
	c.setState(current)

	w := c.handle.Window
	switch model.NextVisibility(current) {
	case model.Hidden:
		if err := w.Hide(); err != nil {
			return c.state, fmt.Errorf("%w: hide: %w", model.ErrPlatform, err)
		}
		c.setState(model.Hidden)

	case model.VisibleFocused:
		if err := w.Show(); err != nil {
			return c.state, fmt.Errorf("%w: show: %w", model.ErrPlatform, err)
		}
		c.setState(model.VisibleUnfocused)
		if err := w.Focus(); err != nil {
			return c.state, fmt.Errorf("%w: focus: %w", model.ErrPlatform, err)
		}
		c.setState(model.VisibleFocused)
	}

	return c.state, nil
}

// observe reads the current state from the window. Must hold c.mu.
func (c *Controller) observe() (model.VisibilityState, error) {
	w := c.handle.Window
	visible, err := w.IsVisible()
	if err != nil {
		return model.Hidden, fmt.Errorf("%w: query visibility: %w", model.ErrPlatform, err)
	}
	focused, err := w.IsFocused()
	if err != nil {
		return model.Hidden, fmt.Errorf("%w: query focus: %w", model.ErrPlatform, err)
	}
	return model.ObservedVisibility(visible, focused), nil
}

// OnFocusChanged records a platform focus change. Focus events while the
// window is hidden are ignored.
func (c *Controller) OnFocusChanged(focused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	switch {
	case c.state == model.Hidden:
		return
	case focused:
		c.setState(model.VisibleFocused)
	default:
		c.setState(model.VisibleUnfocused)
	}

	if prev != c.state {
		c.logger.Debug("overlay focus changed", "from", prev.String(), "to", c.state.String())
	}
}

// OnVisibilityChanged records a visibility change made outside the
// controller (the front-end hiding itself, or acting on a toggle-window event).
func (c *Controller) OnVisibilityChanged(visible, focused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	c.setState(model.ObservedVisibility(visible, focused))
	if prev != c.state {
		c.logger.Debug("overlay visibility changed", "from", prev.String(), "to", c.state.String())
	}
}

// SetStateListener sets the listener for state changes and starts delivery.
func (c *Controller) SetStateListener(listener StateListener) {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	if c.closed {
		return
	}
	c.listener = listener
	if listener != nil && !c.started {
		c.started = true
		go c.deliver()
	}
}

// Close stops state delivery. Queued changes not yet delivered are dropped.
func (c *Controller) Close() {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.quit)
}

// setState records state and queues it for the listener. Must hold c.mu.
func (c *Controller) setState(state model.VisibilityState) {
	if c.state == state {
		return
	}
	c.state = state

	c.qmu.Lock()
	if c.listener == nil || c.closed {
		c.qmu.Unlock()
		return
	}
	c.queue = append(c.queue, state)
	c.qmu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Controller) deliver() {
	for {
		select {
		case <-c.quit:
			return
		case <-c.wake:
		}

		for {
			c.qmu.Lock()
			if len(c.queue) == 0 || c.closed {
				c.qmu.Unlock()
				break
			}
			state, listener := c.queue[0], c.listener
			c.queue = c.queue[1:]
			c.qmu.Unlock()

			if listener != nil {
				listener(state)
			}
		}
	}
}

// State returns the last known visibility state.
func (c *Controller) State() model.VisibilityState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mode returns the toggle mode.
func (c *Controller) Mode() config.ToggleMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches the toggle mode, e.g. after a config reload.
func (c *Controller) SetMode(mode config.ToggleMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mode == config.ToggleModeEvent && c.initialized && c.handle.Events == nil {
		return fmt.Errorf("%w: event toggle mode requires an event emitter", model.ErrPlatform)
	}
	if c.mode != mode {
		c.logger.Info("hotkey toggle mode changed", "from", string(c.mode), "to", string(mode))
	}
	c.mode = mode
	return nil
}
