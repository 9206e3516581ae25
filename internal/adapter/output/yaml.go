package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats the note as YAML.
type YAMLFormatter struct{}

// Format writes the document as a YAML mapping. Multi-line content is
// emitted as a block scalar.
func (f *YAMLFormatter) Format(w io.Writer, doc Document) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	return encoder.Close()
}
