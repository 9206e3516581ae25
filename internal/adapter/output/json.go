package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats the note as JSON.
type JSONFormatter struct{}

// Format writes the document as an indented JSON object.
func (f *JSONFormatter) Format(w io.Writer, doc Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
