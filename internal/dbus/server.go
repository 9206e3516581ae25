package dbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/quicknote/internal/invoke"
	"github.com/jmylchreest/quicknote/internal/model"
)

// Toggler drives the overlay window.
type Toggler interface {
	Toggle() (model.VisibilityState, error)
	State() model.VisibilityState
}

// signalEmitter sends signals. *dbus.Conn implements it.
type signalEmitter interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// Service exports the quicknote invoke surface on the session bus.
type Service struct {
	conn    *dbus.Conn
	emitter signalEmitter
	router  *invoke.Router
	toggler Toggler
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewService creates a Service on conn.
func NewService(conn *dbus.Conn, router *invoke.Router, toggler Toggler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		conn:    conn,
		router:  router,
		toggler: toggler,
		logger:  logger,
	}
	if conn != nil {
		s.emitter = conn
	}
	return s
}

// Start exports the service object and claims the bus name.
// Fails if another quicknoted already owns the name.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("service already running")
	}

	if err := s.conn.Export(s, ServicePath, ServiceInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: ServicePath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    ServiceInterface,
				Methods: serviceMethods(),
				Signals: serviceSignals(),
			},
		},
	}
	if err := s.conn.Export(introspect.NewIntrospectable(node), ServicePath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := s.conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken (is quicknoted already running?)", ServiceName)
	}

	s.running = true
	s.logger.Info("D-Bus service started", "name", ServiceName, "path", ServicePath)
	return nil
}

// Stop releases the bus name and unexports the object.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if _, err := s.conn.ReleaseName(ServiceName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	_ = s.conn.Export(nil, ServicePath, ServiceInterface)
	_ = s.conn.Export(nil, ServicePath, "org.freedesktop.DBus.Introspectable")

	s.logger.Info("D-Bus service stopped")
	return nil
}

// SaveNote overwrites the note.
// D-Bus method: SaveNote(s) -> nothing
func (s *Service) SaveNote(content string) *dbus.Error {
	s.logger.Debug("SaveNote called", "bytes", len(content))
	return toDBusError(s.router.SaveNote(context.Background(), content))
}

// LoadNote returns the note.
// D-Bus method: LoadNote() -> s
func (s *Service) LoadNote() (string, *dbus.Error) {
	s.logger.Debug("LoadNote called")
	content, err := s.router.LoadNote(context.Background())
	return content, toDBusError(err)
}

// ShowNotification shows a desktop notification.
// D-Bus method: ShowNotification(ss) -> nothing
func (s *Service) ShowNotification(title, body string) *dbus.Error {
	s.logger.Debug("ShowNotification called", "title", title)
	return toDBusError(s.router.ShowNotification(context.Background(), title, body))
}

// Toggle toggles the overlay window and returns the resulting state.
// D-Bus method: Toggle() -> s
func (s *Service) Toggle() (string, *dbus.Error) {
	s.logger.Debug("Toggle called")
	state, err := s.toggler.Toggle()
	return state.String(), toDBusError(err)
}

// State returns the overlay window state.
// D-Bus method: State() -> s
func (s *Service) State() (string, *dbus.Error) {
	return s.toggler.State().String(), nil
}

// Invoke runs a named command with JSON arguments and returns the JSON result.
// D-Bus method: Invoke(ss) -> s
func (s *Service) Invoke(command, args string) (string, *dbus.Error) {
	s.logger.Debug("Invoke called", "command", command)

	var raw json.RawMessage
	if args != "" {
		raw = json.RawMessage(args)
	}
	result, err := s.router.Invoke(context.Background(), command, raw)
	if err != nil {
		return "", toDBusError(err)
	}
	return string(result), nil
}

// serviceMethods returns the D-Bus method introspection data.
func serviceMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "SaveNote",
			Args: []introspect.Arg{
				{Name: "content", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "LoadNote",
			Args: []introspect.Arg{
				{Name: "content", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "ShowNotification",
			Args: []introspect.Arg{
				{Name: "title", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "Toggle",
			Args: []introspect.Arg{
				{Name: "state", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "State",
			Args: []introspect.Arg{
				{Name: "state", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Invoke",
			Args: []introspect.Arg{
				{Name: "command", Type: "s", Direction: "in"},
				{Name: "args", Type: "s", Direction: "in"},
				{Name: "result", Type: "s", Direction: "out"},
			},
		},
	}
}

// serviceSignals returns the D-Bus signal introspection data.
func serviceSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NoteChanged",
		},
		{
			Name: "StateChanged",
			Args: []introspect.Arg{
				{Name: "state", Type: "s"},
			},
		},
	}
}
