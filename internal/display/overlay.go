package display

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/quicknote/internal/config"
	"github.com/jmylchreest/quicknote/internal/model"
	"github.com/jmylchreest/quicknote/internal/platform"
	"github.com/jmylchreest/quicknote/internal/store"
)

// storeTimeout bounds a single load or save issued by the overlay.
const storeTimeout = 5 * time.Second

// NoteBackend is the note surface the overlay edits.
// *invoke.Router satisfies it.
type NoteBackend interface {
	SaveNote(ctx context.Context, content string) error
	LoadNote(ctx context.Context) (string, error)
}

// FocusCallback is called when the window gains or loses input focus.
type FocusCallback func(focused bool)

// VisibilityCallback is called when the overlay hides or shows itself.
type VisibilityCallback func(visible, focused bool)

// ErrorCallback is called when loading or saving the note fails.
type ErrorCallback func(err error)

// Overlay is the note window. All exported methods are safe to call from
// any goroutine; widget access is marshalled onto the GTK main loop.
// Callbacks are invoked on their own goroutine so they may call back into
// the hotkey controller without blocking the main loop.
type Overlay struct {
	window *gtk.Window
	view   *gtk.TextView
	status *gtk.Label
	notes  NoteBackend
	logger *slog.Logger

	mu           sync.RWMutex
	onFocus      FocusCallback
	onVisibility VisibilityCallback
	onError      ErrorCallback

	destroyed atomic.Bool
	saves     *store.SaveQueue

	// synced is the content last loaded from or saved to the store.
	// queued is the content last handed to the save queue.
	// Main loop only.
	synced string
	queued string
}

// NewOverlay creates the overlay window. It starts hidden.
// Must be called on the GTK main loop.
func NewOverlay(app *gtk.Application, cfg config.WindowConfig, notes NoteBackend, logger *slog.Logger) *Overlay {
	if logger == nil {
		logger = slog.Default()
	}

	o := &Overlay{
		notes:  notes,
		logger: logger,
	}
	o.saves = store.NewSaveQueue(notes.SaveNote, o.saved, storeTimeout)

	o.window = gtk.NewWindow()
	o.window.SetApplication(app)
	o.window.SetTitle(config.DefaultAppName)
	o.window.SetDecorated(false)
	o.window.SetDefaultSize(cfg.Width, cfg.Height)
	o.window.AddCSSClass("quicknote-overlay")

	if cfg.LayerShell {
		layershell.InitForWindow(o.window)
		layershell.SetLayer(o.window, layershell.LayerShellLayerOverlay)
		layershell.SetExclusiveZone(o.window, 0)
		layershell.SetKeyboardMode(o.window, layershell.LayerShellKeyboardModeOnDemand)
		layershell.SetNamespace(o.window, "quicknote")
	}

	o.buildUI()
	o.connectSignals()
	o.window.SetVisible(false)

	return o
}

// buildUI constructs the editor widget hierarchy.
func (o *Overlay) buildUI() {
	box := gtk.NewBox(gtk.OrientationVertical, 0)

	o.view = gtk.NewTextView()
	o.view.AddCSSClass("quicknote-editor")
	o.view.SetWrapMode(gtk.WrapWordChar)
	o.view.SetAcceptsTab(false)

	scroller := gtk.NewScrolledWindow()
	scroller.SetChild(o.view)
	scroller.SetVExpand(true)
	scroller.SetHExpand(true)
	box.Append(scroller)

	o.status = gtk.NewLabel("")
	o.status.AddCSSClass("quicknote-status")
	o.status.SetXAlign(0)
	o.status.SetVisible(false)
	box.Append(o.status)

	o.window.SetChild(box)
}

func (o *Overlay) connectSignals() {
	o.window.NotifyProperty("is-active", func() {
		active := o.window.IsActive()
		if cb := o.focusCallback(); cb != nil {
			go cb(active)
		}
	})

	// The window is hidden, never destroyed, when the user closes it.
	o.window.ConnectCloseRequest(func() bool {
		o.dismiss()
		return true
	})

	o.window.ConnectDestroy(func() {
		o.destroyed.Store(true)
		go o.saves.Close()
	})

	keyCtrl := gtk.NewEventControllerKey()
	keyCtrl.ConnectKeyPressed(func(keyval, keycode uint, state gdk.ModifierType) bool {
		switch {
		case keyval == gdk.KEY_Escape:
			o.dismiss()
			return true
		case keyval == gdk.KEY_s && state&gdk.ControlMask != 0:
			o.saveAsync(o.text())
			return true
		}
		return false
	})
	o.window.AddController(keyCtrl)
}

// SetFocusCallback sets the callback for focus changes.
func (o *Overlay) SetFocusCallback(cb FocusCallback) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onFocus = cb
}

// SetVisibilityCallback sets the callback for visibility changes the
// overlay makes on its own (Escape, close button, toggle-window events).
func (o *Overlay) SetVisibilityCallback(cb VisibilityCallback) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onVisibility = cb
}

// SetErrorCallback sets the callback for note load and save failures.
func (o *Overlay) SetErrorCallback(cb ErrorCallback) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onError = cb
}

func (o *Overlay) focusCallback() FocusCallback {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.onFocus
}

func (o *Overlay) visibilityCallback() VisibilityCallback {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.onVisibility
}

func (o *Overlay) errorCallback() ErrorCallback {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.onError
}

// call runs fn on the main loop unless the window is gone.
func (o *Overlay) call(fn func() error) error {
	if o.destroyed.Load() {
		return platform.ErrWindowGone
	}
	return onMain(func() error {
		if o.destroyed.Load() {
			return platform.ErrWindowGone
		}
		return fn()
	})
}

// IsVisible reports whether the window is mapped.
func (o *Overlay) IsVisible() (bool, error) {
	var visible bool
	err := o.call(func() error {
		visible = o.window.IsVisible()
		return nil
	})
	return visible, err
}

// IsFocused reports whether the window holds input focus.
func (o *Overlay) IsFocused() (bool, error) {
	var focused bool
	err := o.call(func() error {
		focused = o.window.IsVisible() && o.window.IsActive()
		return nil
	})
	return focused, err
}

// Show maps the window and refreshes the editor from the store.
func (o *Overlay) Show() error {
	err := o.call(func() error {
		o.window.SetVisible(true)
		return nil
	})
	if err != nil {
		return err
	}
	o.reloadAsync()
	return nil
}

// Hide unmaps the window and saves the editor content.
func (o *Overlay) Hide() error {
	return o.call(func() error {
		content := o.text()
		o.window.SetVisible(false)
		o.saveAsync(content)
		return nil
	})
}

// Focus raises the window and moves keyboard focus to the editor.
func (o *Overlay) Focus() error {
	return o.call(func() error {
		o.window.Present()
		o.view.GrabFocus()
		return nil
	})
}

// ToggleSelf applies one toggle decision from the window's own observed
// state. It is the front-end's handler for toggle-window events.
func (o *Overlay) ToggleSelf() (model.VisibilityState, error) {
	visible, err := o.IsVisible()
	if err != nil {
		return model.Hidden, fmt.Errorf("%w: query visibility: %w", model.ErrPlatform, err)
	}
	focused, err := o.IsFocused()
	if err != nil {
		return model.Hidden, fmt.Errorf("%w: query focus: %w", model.ErrPlatform, err)
	}
	current := model.ObservedVisibility(visible, focused)

	next := model.NextVisibility(current)
	switch next {
	case model.Hidden:
		if err := o.Hide(); err != nil {
			return current, fmt.Errorf("%w: hide: %w", model.ErrPlatform, err)
		}
	case model.VisibleFocused:
		if err := o.Show(); err != nil {
			return current, fmt.Errorf("%w: show: %w", model.ErrPlatform, err)
		}
		if err := o.Focus(); err != nil {
			return model.VisibleUnfocused, fmt.Errorf("%w: focus: %w", model.ErrPlatform, err)
		}
	}

	if cb := o.visibilityCallback(); cb != nil {
		go cb(next != model.Hidden, next == model.VisibleFocused)
	}
	return next, nil
}

// Reload refreshes the editor from the store if the window is visible and
// holds no unsaved edits. Used when the note file changes externally.
func (o *Overlay) Reload() {
	if o.destroyed.Load() {
		return
	}
	glib.IdleAdd(func() {
		if o.window.IsVisible() {
			o.reloadAsync()
		}
	})
}

// Close waits for queued saves to finish. The overlay must not be used after.
func (o *Overlay) Close() {
	o.saves.Close()
}

// dismiss hides the window in response to the user. Main loop only.
func (o *Overlay) dismiss() {
	content := o.text()
	o.window.SetVisible(false)
	o.saveAsync(content)
	if cb := o.visibilityCallback(); cb != nil {
		go cb(false, false)
	}
}

// text returns the editor content. Main loop only.
func (o *Overlay) text() string {
	buffer := o.view.Buffer()
	start, end := buffer.Bounds()
	return buffer.Text(start, end, true)
}

// reloadAsync loads the note off the main loop and applies it on return.
func (o *Overlay) reloadAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		content, err := o.notes.LoadNote(ctx)
		glib.IdleAdd(func() {
			if err != nil {
				o.setStatus(err.Error(), true)
				o.reportError(fmt.Errorf("load note: %w", err))
				return
			}
			current := o.text()
			if current != o.synced && current != content {
				o.logger.Debug("keeping unsaved edits over stored note")
				return
			}
			o.synced = content
			o.queued = content
			if current != content {
				o.view.Buffer().SetText(content)
			}
			o.setStatus("", false)
		})
	}()
}

// saveAsync queues content for saving when it differs from the last
// queued note. Saves run in order on the queue's goroutine. Main loop only.
func (o *Overlay) saveAsync(content string) {
	if content == o.queued {
		return
	}
	o.queued = content
	o.saves.Push(content)
}

// saved applies the result of a queued save. Runs on the save queue.
func (o *Overlay) saved(content string, err error) {
	glib.IdleAdd(func() {
		if err != nil {
			// Let the next hide retry the same content.
			if o.queued == content {
				o.queued = o.synced
			}
			o.setStatus(err.Error(), true)
			o.reportError(fmt.Errorf("save note: %w", err))
			return
		}
		o.synced = content
		o.setStatus("Saved", false)
	})
}

// setStatus updates the status line. Main loop only.
func (o *Overlay) setStatus(msg string, isError bool) {
	if isError {
		o.status.AddCSSClass("error")
	} else {
		o.status.RemoveCSSClass("error")
	}
	o.status.SetText(msg)
	o.status.SetVisible(msg != "")
}

func (o *Overlay) reportError(err error) {
	o.logger.Warn("note operation failed", "error", err)
	if cb := o.errorCallback(); cb != nil {
		go cb(err)
	}
}
