// Package invoke implements the request/response boundary between the
// overlay front-end (or other processes) and the backend operations.
package invoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/quicknote/internal/model"
)

// Command names. These are the contract with the front-end.
const (
	CmdSaveNote         = "save_note"
	CmdLoadNote         = "load_note"
	CmdShowNotification = "show_notification"
)

var (
	// ErrUnknownCommand is returned for commands with no registered handler.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidArgs is returned when command arguments do not decode.
	ErrInvalidArgs = errors.New("invalid arguments")
)

// NoteStore is the persistence backend used by save_note and load_note.
type NoteStore interface {
	Save(content string) error
	Load() (string, error)
}

// Notifier is the notification backend used by show_notification.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Handler executes one command. args is the raw JSON argument object
// (may be empty); the result is encoded as JSON.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// SaveNoteArgs are the arguments of save_note.
type SaveNoteArgs struct {
	Content string `json:"content"`
}

// ShowNotificationArgs are the arguments of show_notification.
type ShowNotificationArgs struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Router dispatches named commands to handlers.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewRouter creates a Router with the note and notification commands registered.
func NewRouter(store NoteStore, notifier Notifier, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		handlers: make(map[string]Handler),
		logger:   logger,
	}

	r.Register(CmdSaveNote, func(_ context.Context, raw json.RawMessage) (any, error) {
		var args SaveNoteArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, store.Save(args.Content)
	})

	r.Register(CmdLoadNote, func(_ context.Context, _ json.RawMessage) (any, error) {
		return store.Load()
	})

	r.Register(CmdShowNotification, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args ShowNotificationArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, notifier.Notify(ctx, args.Title, args.Body)
	})

	return r
}

// Register adds or replaces the handler for name.
func (r *Router) Register(name string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Commands returns the registered command names, sorted.
func (r *Router) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs command name with JSON arguments and returns the JSON result.
// Handler errors are returned unchanged so callers can inspect their kind.
func (r *Router) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	requestID := ulid.Make().String()
	start := time.Now()
	logger := r.logger.With("request_id", requestID, "command", name)

	result, err := handler(ctx, args)
	if err != nil {
		logger.Warn("command failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		logger.Warn("failed to encode result", "error", err)
		return nil, fmt.Errorf("encode %s result: %w", name, err)
	}

	logger.Debug("command completed", "duration", time.Since(start))
	return data, nil
}

// SaveNote invokes save_note.
func (r *Router) SaveNote(ctx context.Context, content string) error {
	// Encoding the arguments would silently replace invalid UTF-8.
	if err := model.NewNote(content).Validate(); err != nil {
		return err
	}
	args, err := json.Marshal(SaveNoteArgs{Content: content})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	_, err = r.Invoke(ctx, CmdSaveNote, args)
	return err
}

// LoadNote invokes load_note.
func (r *Router) LoadNote(ctx context.Context) (string, error) {
	data, err := r.Invoke(ctx, CmdLoadNote, nil)
	if err != nil {
		return "", err
	}
	var content string
	if err := json.Unmarshal(data, &content); err != nil {
		return "", fmt.Errorf("decode %s result: %w", CmdLoadNote, err)
	}
	return content, nil
}

// ShowNotification invokes show_notification.
func (r *Router) ShowNotification(ctx context.Context, title, body string) error {
	args, err := json.Marshal(ShowNotificationArgs{Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	_, err = r.Invoke(ctx, CmdShowNotification, args)
	return err
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	return nil
}
