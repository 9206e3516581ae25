// Package output provides output formatters for the note.
package output

import (
	"fmt"
	"io"
	"time"
)

// Document is the note as printed by the CLI.
type Document struct {
	Content  string     `json:"content" yaml:"content"`
	Path     string     `json:"path,omitempty" yaml:"path,omitempty"`
	Size     int64      `json:"size,omitempty" yaml:"size,omitempty"`
	Modified *time.Time `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// Formatter formats the note for output.
type Formatter interface {
	// Format writes the formatted note to the writer.
	Format(w io.Writer, doc Document) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// ValidFormats returns all valid format values.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (FormatType, error) {
	for _, f := range ValidFormats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q, must be one of: %v", s, ValidFormats())
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatPlain:
		fallthrough
	default:
		return &PlainFormatter{}
	}
}
