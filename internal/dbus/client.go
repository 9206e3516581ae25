package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client calls a running quicknoted over the session bus.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient creates a Client on conn.
func NewClient(conn *dbus.Conn) *Client {
	return &Client{
		conn: conn,
		obj:  conn.Object(ServiceName, ServicePath),
	}
}

// Running reports whether a daemon owns the service name.
func (c *Client) Running(ctx context.Context) (bool, error) {
	var hasOwner bool
	err := c.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, ServiceName).Store(&hasOwner)
	if err != nil {
		return false, fmt.Errorf("failed to query bus: %w", err)
	}
	return hasOwner, nil
}

// SaveNote calls SaveNote.
func (c *Client) SaveNote(ctx context.Context, content string) error {
	return fromDBusError(c.obj.CallWithContext(ctx, ServiceInterface+".SaveNote", 0, content).Err)
}

// LoadNote calls LoadNote.
func (c *Client) LoadNote(ctx context.Context) (string, error) {
	var content string
	err := c.obj.CallWithContext(ctx, ServiceInterface+".LoadNote", 0).Store(&content)
	return content, fromDBusError(err)
}

// ShowNotification calls ShowNotification.
func (c *Client) ShowNotification(ctx context.Context, title, body string) error {
	return fromDBusError(c.obj.CallWithContext(ctx, ServiceInterface+".ShowNotification", 0, title, body).Err)
}

// Toggle calls Toggle and returns the resulting state name.
func (c *Client) Toggle(ctx context.Context) (string, error) {
	var state string
	err := c.obj.CallWithContext(ctx, ServiceInterface+".Toggle", 0).Store(&state)
	return state, fromDBusError(err)
}

// State calls State.
func (c *Client) State(ctx context.Context) (string, error) {
	var state string
	err := c.obj.CallWithContext(ctx, ServiceInterface+".State", 0).Store(&state)
	return state, fromDBusError(err)
}

// Invoke calls Invoke with a raw JSON argument object.
func (c *Client) Invoke(ctx context.Context, command, args string) (string, error) {
	var result string
	err := c.obj.CallWithContext(ctx, ServiceInterface+".Invoke", 0, command, args).Store(&result)
	return result, fromDBusError(err)
}
