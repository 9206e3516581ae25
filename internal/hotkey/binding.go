// Package hotkey binds the global activation shortcut to the overlay
// window visibility state machine.
package hotkey

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultBinding is the activation shortcut for the overlay.
const DefaultBinding = "Alt+Space"

// Modifier is a bit set of keyboard modifiers.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModSuper
)

// modifierOrder fixes the rendering order of modifiers.
var modifierOrder = []struct {
	mod    Modifier
	name   string
	portal string
}{
	{ModCtrl, "Ctrl", "CTRL"},
	{ModAlt, "Alt", "ALT"},
	{ModShift, "Shift", "SHIFT"},
	{ModSuper, "Super", "LOGO"},
}

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
	"super":   ModSuper,
	"logo":    ModSuper,
	"meta":    ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
}

// namedKeys maps lower-cased key names to their display name and XKB keysym name.
var namedKeys = map[string][2]string{
	"space":     {"Space", "space"},
	"enter":     {"Enter", "Return"},
	"return":    {"Enter", "Return"},
	"tab":       {"Tab", "Tab"},
	"escape":    {"Escape", "Escape"},
	"esc":       {"Escape", "Escape"},
	"backspace": {"Backspace", "BackSpace"},
	"delete":    {"Delete", "Delete"},
	"insert":    {"Insert", "Insert"},
	"home":      {"Home", "Home"},
	"end":       {"End", "End"},
	"pageup":    {"PageUp", "Page_Up"},
	"pagedown":  {"PageDown", "Page_Down"},
	"up":        {"Up", "Up"},
	"down":      {"Down", "Down"},
	"left":      {"Left", "Left"},
	"right":     {"Right", "Right"},
}

// Binding is a parsed key combination.
type Binding struct {
	Mods Modifier
	Key  string // Display name, e.g. "Space", "N", "F5"
	sym  string // XKB keysym name, e.g. "space", "n", "F5"
}

// ParseBinding parses a combination such as "Alt+Space" or "ctrl+shift+n".
// Exactly one non-modifier key is required.
func ParseBinding(s string) (Binding, error) {
	var b Binding
	parts := strings.Split(s, "+")
	for i, raw := range parts {
		part := strings.TrimSpace(raw)
		if part == "" {
			return Binding{}, fmt.Errorf("invalid binding %q: empty key", s)
		}
		lower := strings.ToLower(part)

		if mod, ok := modifierAliases[lower]; ok && i < len(parts)-1 {
			if b.Mods&mod != 0 {
				return Binding{}, fmt.Errorf("invalid binding %q: duplicate modifier %s", s, part)
			}
			b.Mods |= mod
			continue
		}

		if i != len(parts)-1 {
			return Binding{}, fmt.Errorf("invalid binding %q: %q is not a modifier", s, part)
		}

		key, sym, err := parseKey(lower)
		if err != nil {
			return Binding{}, fmt.Errorf("invalid binding %q: %w", s, err)
		}
		b.Key, b.sym = key, sym
	}

	if b.Key == "" {
		return Binding{}, fmt.Errorf("invalid binding %q: missing key", s)
	}
	return b, nil
}

func parseKey(lower string) (key, sym string, err error) {
	if named, ok := namedKeys[lower]; ok {
		return named[0], named[1], nil
	}

	if utf8.RuneCountInString(lower) == 1 {
		r, _ := utf8.DecodeRuneInString(lower)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return strings.ToUpper(lower), lower, nil
		}
	}

	if len(lower) >= 2 && lower[0] == 'f' {
		var n int
		if _, scanErr := fmt.Sscanf(lower[1:], "%d", &n); scanErr == nil && n >= 1 && n <= 24 && fmt.Sprintf("f%d", n) == lower {
			name := fmt.Sprintf("F%d", n)
			return name, name, nil
		}
	}

	return "", "", fmt.Errorf("unknown key %q", lower)
}

// String renders the binding in its canonical form, e.g. "Alt+Space".
func (b Binding) String() string {
	parts := make([]string, 0, 5)
	for _, m := range modifierOrder {
		if b.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, b.Key), "+")
}

// PortalTrigger renders the binding in the XDG shortcuts format used by the
// GlobalShortcuts portal, e.g. "ALT+space".
func (b Binding) PortalTrigger() string {
	parts := make([]string, 0, 5)
	for _, m := range modifierOrder {
		if b.Mods&m.mod != 0 {
			parts = append(parts, m.portal)
		}
	}
	return strings.Join(append(parts, b.sym), "+")
}

// ID returns a stable identifier for the binding, e.g. "alt-space".
func (b Binding) ID() string {
	return strings.ToLower(strings.ReplaceAll(b.String(), "+", "-"))
}
