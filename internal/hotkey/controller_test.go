package hotkey

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/quicknote/internal/config"
	"github.com/jmylchreest/quicknote/internal/events"
	"github.com/jmylchreest/quicknote/internal/model"
	"github.com/jmylchreest/quicknote/internal/platform"
)

// fakeWindow is an in-memory platform.Window.
type fakeWindow struct {
	mu       sync.Mutex
	visible  bool
	focused  bool
	calls    []string
	failOn   map[string]error
	queryErr error
}

func newFakeWindow(visible, focused bool) *fakeWindow {
	return &fakeWindow{visible: visible, focused: focused, failOn: map[string]error{}}
}

func (w *fakeWindow) record(op string) error {
	w.calls = append(w.calls, op)
	return w.failOn[op]
}

func (w *fakeWindow) IsVisible() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible, w.queryErr
}

func (w *fakeWindow) IsFocused() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focused, w.queryErr
}

func (w *fakeWindow) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.record("show"); err != nil {
		return err
	}
	w.visible = true
	return nil
}

func (w *fakeWindow) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.record("hide"); err != nil {
		return err
	}
	w.visible = false
	w.focused = false
	return nil
}

func (w *fakeWindow) Focus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.record("focus"); err != nil {
		return err
	}
	w.focused = w.visible
	return nil
}

func (w *fakeWindow) set(visible, focused bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible, w.focused = visible, focused
	w.calls = nil
}

// fakeRegistrar records registrations and lets tests fire the shortcut.
type fakeRegistrar struct {
	trigger  string
	callback func()
	err      error
}

func (r *fakeRegistrar) Register(_ context.Context, trigger string, callback func()) error {
	if r.err != nil {
		return r.err
	}
	r.trigger = trigger
	r.callback = callback
	return nil
}

func (r *fakeRegistrar) Close() error { return nil }

func (r *fakeRegistrar) fire() { r.callback() }

func setupController(t *testing.T, mode config.ToggleMode) (*Controller, *fakeWindow, *fakeRegistrar, *events.Bus) {
	t.Helper()
	w := newFakeWindow(true, false) // platform shows windows by default
	r := &fakeRegistrar{}
	bus := events.NewBus(nil)

	c := NewController(mode, nil)
	t.Cleanup(c.Close)
	require.NoError(t, c.Initialize(context.Background(), platform.Handle{Window: w, Shortcuts: r, Events: bus}))
	return c, w, r, bus
}

func TestController_Initialize(t *testing.T) {
	c, w, r, _ := setupController(t, config.ToggleModeDirect)

	assert.Equal(t, "Alt+Space", r.trigger)
	assert.NotNil(t, r.callback)
	assert.Equal(t, model.Hidden, c.State())
	assert.False(t, w.visible, "initialize hides the window")
}

func TestController_InitializeNoWindow(t *testing.T) {
	c := NewController(config.ToggleModeDirect, nil)
	err := c.Initialize(context.Background(), platform.Handle{Shortcuts: &fakeRegistrar{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPlatform)
	assert.ErrorIs(t, err, platform.ErrNoWindow)
}

func TestController_InitializeRegistrationRejected(t *testing.T) {
	c := NewController(config.ToggleModeDirect, nil)
	r := &fakeRegistrar{err: platform.ErrShortcutRejected}

	err := c.Initialize(context.Background(), platform.Handle{Window: newFakeWindow(false, false), Shortcuts: r})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPlatform)
	assert.ErrorIs(t, err, platform.ErrShortcutRejected)

	_, err = c.Toggle()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestController_InitializeEventModeNeedsEmitter(t *testing.T) {
	c := NewController(config.ToggleModeEvent, nil)
	err := c.Initialize(context.Background(), platform.Handle{Window: newFakeWindow(false, false), Shortcuts: &fakeRegistrar{}})
	assert.ErrorIs(t, err, model.ErrPlatform)
}

func TestController_ToggleFromHidden(t *testing.T) {
	c, w, r, _ := setupController(t, config.ToggleModeDirect)
	w.set(false, false)

	r.fire()

	assert.Equal(t, model.VisibleFocused, c.State())
	assert.True(t, w.visible)
	assert.True(t, w.focused)
	assert.Equal(t, []string{"show", "focus"}, w.calls)
}

func TestController_ToggleFromFocused(t *testing.T) {
	c, w, r, _ := setupController(t, config.ToggleModeDirect)
	r.fire()
	require.Equal(t, model.VisibleFocused, c.State())
	w.set(true, true)

	r.fire()

	assert.Equal(t, model.Hidden, c.State())
	assert.False(t, w.visible)
	assert.Equal(t, []string{"hide"}, w.calls)
}

func TestController_ToggleFromVisibleUnfocused(t *testing.T) {
	c, w, r, _ := setupController(t, config.ToggleModeDirect)
	r.fire()
	w.set(true, false)
	c.OnFocusChanged(false)
	require.Equal(t, model.VisibleUnfocused, c.State())

	r.fire()

	assert.Equal(t, model.VisibleFocused, c.State())
	assert.True(t, w.visible)
	assert.True(t, w.focused)
	assert.Equal(t, []string{"show", "focus"}, w.calls, "an unfocused window is raised, not hidden")
}

func TestController_ToggleUsesWindowTruth(t *testing.T) {
	c, w, _, _ := setupController(t, config.ToggleModeDirect)
	_, err := c.Toggle()
	require.NoError(t, err)

	// Focus was lost without the controller seeing the event
	w.set(true, false)

	state, err := c.Toggle()
	require.NoError(t, err)
	assert.Equal(t, model.VisibleFocused, state)
	assert.Equal(t, []string{"show", "focus"}, w.calls)
}

func TestController_ToggleFailureAborts(t *testing.T) {
	c, w, _, _ := setupController(t, config.ToggleModeDirect)
	w.set(false, false)
	w.failOn["show"] = platform.ErrWindowGone

	state, err := c.Toggle()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPlatform)
	assert.ErrorIs(t, err, platform.ErrWindowGone)
	assert.Equal(t, model.Hidden, state)
	assert.Equal(t, model.Hidden, c.State())
	assert.NotContains(t, w.calls, "focus")
}

func TestController_ToggleFocusFailure(t *testing.T) {
	c, w, _, _ := setupController(t, config.ToggleModeDirect)
	w.set(false, false)
	w.failOn["focus"] = errors.New("focus denied")

	state, err := c.Toggle()
	require.Error(t, err)
	assert.Equal(t, model.VisibleUnfocused, state)
}

func TestController_ToggleQueryFailure(t *testing.T) {
	c, w, r, _ := setupController(t, config.ToggleModeDirect)
	w.set(false, false)
	w.queryErr = platform.ErrWindowGone

	assert.NotPanics(t, r.fire)
	assert.Equal(t, model.Hidden, c.State())
	assert.Empty(t, w.calls)
}

func TestController_EventMode(t *testing.T) {
	c, w, r, bus := setupController(t, config.ToggleModeEvent)
	w.set(false, false)

	toggles := 0
	bus.Subscribe(events.ToggleWindow, func() {
		toggles++
		// The front-end reports back from inside the handler
		c.OnVisibilityChanged(true, true)
	})

	r.fire()

	assert.Equal(t, 1, toggles)
	assert.Empty(t, w.calls, "event mode never touches the window")
	assert.Equal(t, model.VisibleFocused, c.State())
}

func TestController_SetMode(t *testing.T) {
	c, w, r, bus := setupController(t, config.ToggleModeDirect)
	w.set(false, false)

	toggles := 0
	bus.Subscribe(events.ToggleWindow, func() { toggles++ })

	require.NoError(t, c.SetMode(config.ToggleModeEvent))
	assert.Equal(t, config.ToggleModeEvent, c.Mode())
	r.fire()
	assert.Equal(t, 1, toggles)

	require.NoError(t, c.SetMode(config.ToggleModeDirect))
	r.fire()
	assert.Equal(t, 1, toggles)
	assert.Equal(t, model.VisibleFocused, c.State())
}

func TestController_OnFocusChanged(t *testing.T) {
	c, _, _, _ := setupController(t, config.ToggleModeDirect)

	// Ignored while hidden
	c.OnFocusChanged(true)
	assert.Equal(t, model.Hidden, c.State())

	_, err := c.Toggle()
	require.NoError(t, err)

	c.OnFocusChanged(false)
	assert.Equal(t, model.VisibleUnfocused, c.State())
	c.OnFocusChanged(true)
	assert.Equal(t, model.VisibleFocused, c.State())
}

func TestController_ConcurrentToggleAndFocus(t *testing.T) {
	c, _, r, _ := setupController(t, config.ToggleModeDirect)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.fire()
		}()
		go func(i int) {
			defer wg.Done()
			c.OnFocusChanged(i%2 == 0)
		}(i)
	}
	wg.Wait()

	// Whatever the interleaving, the state is one of the valid states.
	assert.Contains(t, []model.VisibilityState{model.Hidden, model.VisibleUnfocused, model.VisibleFocused}, c.State())
}

func TestController_StateListener(t *testing.T) {
	c, w, r, _ := setupController(t, config.ToggleModeDirect)
	w.set(false, false)

	states := make(chan model.VisibilityState, 8)
	c.SetStateListener(func(s model.VisibilityState) { states <- s })

	r.fire()

	// Show then focus: two transitions, delivered in order.
	var got []model.VisibilityState
	for range 2 {
		select {
		case s := <-states:
			got = append(got, s)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for state change")
		}
	}
	assert.Equal(t, []model.VisibilityState{model.VisibleUnfocused, model.VisibleFocused}, got)

	// No change, no notification.
	c.OnFocusChanged(true)
	select {
	case s := <-states:
		t.Fatalf("unexpected state change to %s", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestController_StateListenerLastMatchesToggle(t *testing.T) {
	c, w, _, _ := setupController(t, config.ToggleModeDirect)

	var (
		mu   sync.Mutex
		seen []model.VisibilityState
	)
	c.SetStateListener(func(s model.VisibilityState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	for i := range 200 {
		w.set(false, false)
		c.OnVisibilityChanged(false, false)

		state, err := c.Toggle()
		require.NoError(t, err)
		require.Equal(t, model.VisibleFocused, state)

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(seen) > 0 && seen[len(seen)-1] == state
		}, time.Second, time.Millisecond, "toggle %d: last delivered state must match the toggle result", i)

		// Nothing delivered after the final state.
		time.Sleep(time.Millisecond)
		mu.Lock()
		last := seen[len(seen)-1]
		mu.Unlock()
		require.Equal(t, state, last, "toggle %d", i)
	}
}

func TestController_CloseStopsDelivery(t *testing.T) {
	c, w, _, _ := setupController(t, config.ToggleModeDirect)
	w.set(false, false)

	states := make(chan model.VisibilityState, 8)
	c.SetStateListener(func(s model.VisibilityState) { states <- s })
	c.Close()
	c.Close()

	_, err := c.Toggle()
	require.NoError(t, err)

	select {
	case s := <-states:
		t.Fatalf("unexpected delivery after close: %s", s)
	case <-time.After(50 * time.Millisecond):
	}
}

// blockingRegistrar waits for the caller's context like a portal waiting on
// an unanswered confirmation dialog.
type blockingRegistrar struct{}

func (blockingRegistrar) Register(ctx context.Context, _ string, _ func()) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingRegistrar) Close() error { return nil }

func TestController_InitializeRegistrationDeadline(t *testing.T) {
	c := NewController(config.ToggleModeDirect, nil)
	t.Cleanup(c.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Initialize(ctx, platform.Handle{Window: newFakeWindow(false, false), Shortcuts: blockingRegistrar{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPlatform)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = c.Toggle()
	assert.ErrorIs(t, err, ErrNotInitialized)
}
