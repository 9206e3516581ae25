package hotkey

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/quicknote/internal/model"
	"github.com/jmylchreest/quicknote/internal/platform"
)

const (
	portalBusName      = "org.freedesktop.portal.Desktop"
	portalPath         = "/org/freedesktop/portal/desktop"
	shortcutsInterface = "org.freedesktop.portal.GlobalShortcuts"
	requestInterface   = "org.freedesktop.portal.Request"
	sessionInterface   = "org.freedesktop.portal.Session"
)

// Portal response codes (org.freedesktop.portal.Request.Response).
const (
	responseSuccess   uint32 = 0
	responseCancelled uint32 = 1
)

// portalShortcut is the (sa{sv}) struct passed to BindShortcuts.
type portalShortcut struct {
	ID      string
	Options map[string]dbus.Variant
}

// PortalRegistrar registers global shortcuts through the XDG desktop
// portal GlobalShortcuts interface. It works on Wayland compositors and on
// X11 desktops running xdg-desktop-portal.
type PortalRegistrar struct {
	conn        *dbus.Conn
	logger      *slog.Logger
	description string
	tokenSeq    atomic.Uint64

	mu        sync.Mutex
	session   dbus.ObjectPath
	callbacks map[string]func()
	signals   chan *dbus.Signal
	done      chan struct{}
}

// NewPortalRegistrar creates a registrar on conn (normally the session bus).
// description is shown by the desktop when asking the user to confirm the binding.
func NewPortalRegistrar(conn *dbus.Conn, description string, logger *slog.Logger) *PortalRegistrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortalRegistrar{
		conn:        conn,
		logger:      logger,
		description: description,
		callbacks:   make(map[string]func()),
	}
}

// Register binds trigger to callback. A binding the user or the compositor
// refuses is reported as platform.ErrShortcutRejected.
func (r *PortalRegistrar) Register(ctx context.Context, trigger string, callback func()) error {
	b, err := ParseBinding(trigger)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrPlatform, err)
	}

	session, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	shortcuts := []portalShortcut{{
		ID: b.ID(),
		Options: map[string]dbus.Variant{
			"description":       dbus.MakeVariant(r.description),
			"preferred_trigger": dbus.MakeVariant(b.PortalTrigger()),
		},
	}}

	// Install the callback first: activations may arrive before the response.
	r.mu.Lock()
	r.callbacks[b.ID()] = callback
	r.mu.Unlock()

	results, err := r.request(ctx, "BindShortcuts", func(options map[string]dbus.Variant) []any {
		return []any{session, shortcuts, "", options}
	})
	if err != nil {
		r.mu.Lock()
		delete(r.callbacks, b.ID())
		r.mu.Unlock()
		return err
	}

	if !boundShortcut(results, b.ID()) {
		r.mu.Lock()
		delete(r.callbacks, b.ID())
		r.mu.Unlock()
		return fmt.Errorf("%w: %w: %s not bound", model.ErrPlatform, platform.ErrShortcutRejected, b)
	}

	r.logger.Info("global shortcut bound", "id", b.ID(), "trigger", b.PortalTrigger())
	return nil
}

// Close ends the portal session, which releases every binding.
func (r *PortalRegistrar) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == "" {
		return nil
	}

	r.conn.RemoveSignal(r.signals)
	_ = r.conn.RemoveMatchSignal(activatedMatch()...)
	close(r.done)

	err := r.conn.Object(portalBusName, r.session).Call(sessionInterface+".Close", 0).Err
	r.session = ""
	if err != nil {
		return fmt.Errorf("failed to close shortcut session: %w", err)
	}
	return nil
}

// ensureSession creates the portal session on first use and starts
// delivering Activated signals.
func (r *PortalRegistrar) ensureSession(ctx context.Context) (dbus.ObjectPath, error) {
	r.mu.Lock()
	if r.session != "" {
		defer r.mu.Unlock()
		return r.session, nil
	}
	r.mu.Unlock()

	results, err := r.request(ctx, "CreateSession", func(options map[string]dbus.Variant) []any {
		options["session_handle_token"] = dbus.MakeVariant(r.nextToken())
		return []any{options}
	})
	if err != nil {
		return "", err
	}

	var session dbus.ObjectPath
	if v, ok := results["session_handle"]; ok {
		switch h := v.Value().(type) {
		case string:
			session = dbus.ObjectPath(h)
		case dbus.ObjectPath:
			session = h
		}
	}
	if !session.IsValid() {
		return "", fmt.Errorf("%w: portal returned no shortcut session", model.ErrPlatform)
	}

	if err := r.conn.AddMatchSignal(activatedMatch()...); err != nil {
		return "", fmt.Errorf("%w: failed to subscribe to shortcut activations: %w", model.ErrPlatform, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = session
	r.signals = make(chan *dbus.Signal, 16)
	r.done = make(chan struct{})
	r.conn.Signal(r.signals)
	go r.deliver(session, r.signals, r.done)

	r.logger.Debug("global shortcuts session created", "session", session)
	return session, nil
}

// deliver dispatches Activated signals to the registered callbacks.
// Callbacks run on this goroutine.
func (r *PortalRegistrar) deliver(session dbus.ObjectPath, signals <-chan *dbus.Signal, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if sig.Name != shortcutsInterface+".Activated" || len(sig.Body) < 2 {
				continue
			}
			if s, ok := sig.Body[0].(dbus.ObjectPath); !ok || s != session {
				continue
			}
			id, _ := sig.Body[1].(string)

			r.mu.Lock()
			callback := r.callbacks[id]
			r.mu.Unlock()

			if callback == nil {
				r.logger.Debug("activation for unknown shortcut", "id", id)
				continue
			}
			r.logger.Debug("global shortcut activated", "id", id)
			callback()
		}
	}
}

// request calls a GlobalShortcuts method that answers through a Request
// object and waits for its Response signal.
func (r *PortalRegistrar) request(ctx context.Context, method string, args func(options map[string]dbus.Variant) []any) (map[string]dbus.Variant, error) {
	token := r.nextToken()
	expected := requestPath(r.uniqueName(), token)

	options := map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(token),
	}

	match := []dbus.MatchOption{
		dbus.WithMatchInterface(requestInterface),
		dbus.WithMatchMember("Response"),
	}
	if err := r.conn.AddMatchSignalContext(ctx, match...); err != nil {
		return nil, fmt.Errorf("%w: failed to subscribe to portal responses: %w", model.ErrPlatform, err)
	}
	defer func() { _ = r.conn.RemoveMatchSignal(match...) }()

	responses := make(chan *dbus.Signal, 8)
	r.conn.Signal(responses)
	defer r.conn.RemoveSignal(responses)

	var handle dbus.ObjectPath
	call := r.conn.Object(portalBusName, portalPath).CallWithContext(ctx, shortcutsInterface+"."+method, 0, args(options)...)
	if call.Err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrPlatform, method, call.Err)
	}
	if err := call.Store(&handle); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrPlatform, method, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", model.ErrPlatform, method, ctx.Err())
		case sig := <-responses:
			if sig.Name != requestInterface+".Response" || (sig.Path != handle && sig.Path != expected) {
				continue
			}
			code, results, err := parseResponse(sig)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", model.ErrPlatform, method, err)
			}
			if code != responseSuccess {
				reason := "failed"
				if code == responseCancelled {
					reason = "cancelled by user"
				}
				return nil, fmt.Errorf("%w: %w: %s %s", model.ErrPlatform, platform.ErrShortcutRejected, method, reason)
			}
			return results, nil
		}
	}
}

func (r *PortalRegistrar) nextToken() string {
	return "quicknote" + strconv.FormatUint(r.tokenSeq.Add(1), 10)
}

func (r *PortalRegistrar) uniqueName() string {
	if names := r.conn.Names(); len(names) > 0 {
		return names[0]
	}
	return ""
}

// requestPath predicts the Request object path the portal creates for token.
func requestPath(uniqueName, token string) dbus.ObjectPath {
	sender := strings.ReplaceAll(strings.TrimPrefix(uniqueName, ":"), ".", "_")
	return dbus.ObjectPath(portalPath + "/request/" + sender + "/" + token)
}

func activatedMatch() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchObjectPath(portalPath),
		dbus.WithMatchInterface(shortcutsInterface),
		dbus.WithMatchMember("Activated"),
	}
}

func parseResponse(sig *dbus.Signal) (uint32, map[string]dbus.Variant, error) {
	if len(sig.Body) < 2 {
		return 0, nil, fmt.Errorf("malformed portal response")
	}
	code, ok := sig.Body[0].(uint32)
	if !ok {
		return 0, nil, fmt.Errorf("malformed portal response code")
	}
	results, _ := sig.Body[1].(map[string]dbus.Variant)
	return code, results, nil
}

// boundShortcut reports whether the BindShortcuts results contain id.
func boundShortcut(results map[string]dbus.Variant, id string) bool {
	v, ok := results["shortcuts"]
	if !ok {
		return false
	}

	var bound []portalShortcut
	if err := dbus.Store([]any{v.Value()}, &bound); err != nil {
		return false
	}
	for _, s := range bound {
		if s.ID == id {
			return true
		}
	}
	return false
}
