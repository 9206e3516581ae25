// Package clipboard copies text to the desktop clipboard, either through a
// configured command or through the system clipboard tools (wl-copy, xclip, xsel).
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrNoCommand is returned when no clipboard tool is configured or installed.
var ErrNoCommand = errors.New("no clipboard command available")

// systemUnsupported and systemWrite are the system clipboard, replaceable in tests.
var (
	systemUnsupported = func() bool { return clipboard.Unsupported }
	systemWrite       = clipboard.WriteAll
)

// Copy puts text on the clipboard. A non-empty command is run with text on
// its stdin; otherwise the system clipboard tool is used.
func Copy(ctx context.Context, command, text string) error {
	if strings.TrimSpace(command) != "" {
		return runCommand(ctx, command, text)
	}
	if systemUnsupported() {
		return ErrNoCommand
	}
	return systemWrite(text)
}

// Describe names the clipboard backend Copy would use.
func Describe(command string) string {
	if strings.TrimSpace(command) != "" {
		return command
	}
	if systemUnsupported() {
		return "none"
	}
	return "system"
}

func runCommand(ctx context.Context, command, text string) error {
	parts := strings.Fields(command)
	c := exec.CommandContext(ctx, parts[0], parts[1:]...)
	c.Stdin = strings.NewReader(text)
	if out, err := c.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", parts[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
