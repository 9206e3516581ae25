package output

import (
	"io"
	"strings"
)

// PlainFormatter writes the note content verbatim.
type PlainFormatter struct{}

// Format writes the content followed by a trailing newline if it lacks one.
// An empty note prints nothing.
func (f *PlainFormatter) Format(w io.Writer, doc Document) error {
	if doc.Content == "" {
		return nil
	}
	if _, err := io.WriteString(w, doc.Content); err != nil {
		return err
	}
	if !strings.HasSuffix(doc.Content, "\n") {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}
