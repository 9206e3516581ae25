// Package model defines the core data structures for quicknote.
package model

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// NotesFileName is the name of the persisted note file inside the
// application config directory.
const NotesFileName = "notes.json"

// Note is the single block of free-form text managed by quicknote.
// The zero value is the documented initial state (empty content).
type Note struct {
	Content string `json:"content"`
}

// NewNote creates a Note from content.
func NewNote(content string) Note {
	return Note{Content: content}
}

// Validate checks that the note can be encoded without altering its content.
func (n Note) Validate() error {
	if !utf8.ValidString(n.Content) {
		return fmt.Errorf("%w: content is not valid UTF-8", ErrSerialization)
	}
	return nil
}

// MarshalNote encodes a note into its on-disk JSON representation.
func MarshalNote(n Note) ([]byte, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return data, nil
}

// UnmarshalNote decodes the on-disk representation.
// The payload must be a JSON object with a string content field.
func UnmarshalNote(data []byte) (Note, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Note{}, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	if raw == nil {
		return Note{}, fmt.Errorf("%w: note is not a JSON object", ErrSerialization)
	}

	v, ok := raw["content"]
	if !ok {
		return Note{}, fmt.Errorf("%w: missing content field", ErrSerialization)
	}
	// json.Unmarshal leaves a string untouched on null.
	if len(v) == 0 || v[0] != '"' {
		return Note{}, fmt.Errorf("%w: content is not a string", ErrSerialization)
	}

	var n Note
	if err := json.Unmarshal(v, &n.Content); err != nil {
		return Note{}, fmt.Errorf("%w: content: %w", ErrSerialization, err)
	}
	return n, nil
}
