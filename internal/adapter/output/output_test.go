package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testDocument() Document {
	modified := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return Document{
		Content:  "buy milk\ncall mum",
		Path:     "/home/user/.config/io.github.jmylchreest.quicknote/notes.json",
		Size:     42,
		Modified: &modified,
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range ValidFormats() {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFormat("dmenu")
	assert.Error(t, err)
}

func TestPlainFormatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"empty", "", ""},
		{"adds newline", "hello", "hello\n"},
		{"keeps newline", "hello\n", "hello\n"},
		{"multi-line", "a\nb", "a\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewFormatter(FormatPlain).Format(&buf, Document{Content: tt.content}))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, testDocument()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "buy milk\ncall mum", decoded["content"])
	assert.Equal(t, float64(42), decoded["size"])
	assert.Equal(t, "2026-03-14T09:26:53Z", decoded["modified"])
}

func TestJSONFormatter_OmitsMetadata(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, Document{Content: ""}))
	assert.JSONEq(t, `{"content": ""}`, buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, testDocument()))

	assert.Contains(t, buf.String(), "content: |-\n")

	var decoded Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, testDocument().Content, decoded.Content)
	assert.Equal(t, testDocument().Path, decoded.Path)
}

func TestNewFormatter_DefaultsToPlain(t *testing.T) {
	assert.IsType(t, &PlainFormatter{}, NewFormatter("unknown"))
}
