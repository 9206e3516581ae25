package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBinding(t *testing.T) {
	tests := []struct {
		input   string
		str     string
		portal  string
		id      string
		wantErr bool
	}{
		{input: "Alt+Space", str: "Alt+Space", portal: "ALT+space", id: "alt-space"},
		{input: "alt+space", str: "Alt+Space", portal: "ALT+space", id: "alt-space"},
		{input: " Alt + Space ", str: "Alt+Space", portal: "ALT+space", id: "alt-space"},
		{input: "shift+ctrl+n", str: "Ctrl+Shift+N", portal: "CTRL+SHIFT+n", id: "ctrl-shift-n"},
		{input: "Super+Enter", str: "Super+Enter", portal: "LOGO+Return", id: "super-enter"},
		{input: "Control+F12", str: "Ctrl+F12", portal: "CTRL+F12", id: "ctrl-f12"},
		{input: "Space", str: "Space", portal: "space", id: "space"},
		{input: "", wantErr: true},
		{input: "Alt+", wantErr: true},
		{input: "Alt", wantErr: true},
		{input: "Alt+Alt+Space", wantErr: true},
		{input: "Space+Alt", wantErr: true},
		{input: "Alt+Banana", wantErr: true},
		{input: "Alt+F99", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			b, err := ParseBinding(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.str, b.String())
			assert.Equal(t, tt.portal, b.PortalTrigger())
			assert.Equal(t, tt.id, b.ID())
		})
	}
}

func TestDefaultBinding(t *testing.T) {
	b, err := ParseBinding(DefaultBinding)
	require.NoError(t, err)
	assert.Equal(t, ModAlt, b.Mods)
	assert.Equal(t, "Space", b.Key)
}
