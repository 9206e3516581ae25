package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var setOpts struct {
	appendText bool // Append to the existing note instead of replacing it
	clear      bool // Replace the note with an empty one
}

var setCmd = &cobra.Command{
	Use:   "set [text...]",
	Short: "Replace the note",
	Long: `Replace the stored note.

The note text is taken from the arguments, joined by spaces. Without
arguments it is read from stdin. A running overlay picks up the change.

Examples:
  # Replace the note
  quicknote set "call the plumber"

  # Replace the note with a command's output
  date | quicknote set

  # Add a line to the note
  quicknote set --append "buy milk"

  # Empty the note
  quicknote set --clear`,
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)

	setCmd.Flags().BoolVarP(&setOpts.appendText, "append", "a", false,
		"Append the text as a new line instead of replacing the note")
	setCmd.Flags().BoolVar(&setOpts.clear, "clear", false,
		"Replace the note with an empty note")
}

func runSet(cmd *cobra.Command, args []string) error {
	if setOpts.clear && (len(args) > 0 || setOpts.appendText) {
		return fmt.Errorf("--clear cannot be combined with text or --append")
	}

	var text string
	if !setOpts.clear {
		var err error
		text, err = readNoteInput(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	router := newRouter()
	if setOpts.appendText {
		current, err := router.LoadNote(ctx)
		if err != nil {
			return err
		}
		text = appendLine(current, text)
	}

	if err := router.SaveNote(ctx, text); err != nil {
		return err
	}

	logger.Debug("note saved", "path", noteStore.Path(), "bytes", len(text))
	return nil
}

// readNoteInput returns the note text from args, or from r when args is empty.
func readNoteInput(args []string, r io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// appendLine appends line to note on a new line.
func appendLine(note, line string) string {
	if note == "" {
		return line
	}
	if strings.HasSuffix(note, "\n") {
		return note + line
	}
	return note + "\n" + line
}
