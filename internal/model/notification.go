package model

// NotificationRequest is a single fire-and-forget desktop notification.
type NotificationRequest struct {
	Identifier string // Application identifier (desktop entry), from config
	AppName    string // Human-readable application name
	Title      string
	Body       string
	Icon       string
	TimeoutMs  int32 // -1 = server default
}
