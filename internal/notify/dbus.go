package notify

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/quicknote/internal/model"
)

const (
	// NotificationsInterface is the freedesktop notification interface name.
	NotificationsInterface = "org.freedesktop.Notifications"
	// NotificationsPath is the notification object path.
	NotificationsPath = "/org/freedesktop/Notifications"
	// NotificationsBusName is the bus name owned by the notification daemon.
	NotificationsBusName = "org.freedesktop.Notifications"

	urgencyNormal byte = 1
)

// DBusSender sends notifications to the freedesktop notification daemon.
type DBusSender struct {
	conn *dbus.Conn
}

// NewDBusSender creates a sender on conn (normally the session bus).
func NewDBusSender(conn *dbus.Conn) *DBusSender {
	return &DBusSender{conn: conn}
}

// Available reports whether a notification daemon owns the bus name.
// The session bus activates a daemon on demand when one is installed, so an
// activatable name also counts as available.
func (s *DBusSender) Available(ctx context.Context) (bool, error) {
	var hasOwner bool
	if err := s.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, NotificationsBusName).Store(&hasOwner); err != nil {
		return false, err
	}
	if hasOwner {
		return true, nil
	}

	var activatable []string
	if err := s.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListActivatableNames", 0).Store(&activatable); err != nil {
		return false, err
	}
	for _, name := range activatable {
		if name == NotificationsBusName {
			return true, nil
		}
	}
	return false, nil
}

// Send calls org.freedesktop.Notifications.Notify.
func (s *DBusSender) Send(ctx context.Context, req model.NotificationRequest) (uint32, error) {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyNormal),
	}
	if req.Identifier != "" {
		hints["desktop-entry"] = dbus.MakeVariant(req.Identifier)
	}

	appName := req.AppName
	if appName == "" {
		appName = req.Identifier
	}

	var id uint32
	obj := s.conn.Object(NotificationsBusName, NotificationsPath)
	call := obj.CallWithContext(ctx, NotificationsInterface+".Notify", 0,
		appName,
		uint32(0), // replaces_id
		req.Icon,
		req.Title,
		req.Body,
		[]string{}, // no actions
		hints,
		req.TimeoutMs,
	)
	if call.Err != nil {
		return 0, fmt.Errorf("notify: %w", call.Err)
	}
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}
