package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/quicknote/internal/adapter/output"
	"github.com/jmylchreest/quicknote/internal/clipboard"
)

var getOpts struct {
	format string
	copy   bool
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the note",
	Long: `Print the stored note.

A missing note file prints nothing. A corrupt note file is an error; it is
never treated as an empty note.

Examples:
  # Print the note
  quicknote get

  # Copy the note to the clipboard
  quicknote get --copy

  # Print the note with file metadata as JSON
  quicknote get --format json`,
	Args: cobra.NoArgs,
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getOpts.format, "format", "f", string(output.FormatPlain),
		"Output format (plain, json, yaml)")
	getCmd.Flags().BoolVarP(&getOpts.copy, "copy", "c", false,
		"Copy the note to the clipboard instead of printing it")
}

func runGet(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(getOpts.format)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	content, err := newRouter().LoadNote(ctx)
	if err != nil {
		return err
	}

	if getOpts.copy {
		command := cfg.Clipboard.Command
		if err := clipboard.Copy(ctx, command, content); err != nil {
			return fmt.Errorf("failed to copy note: %w", err)
		}
		logger.Debug("note copied to clipboard", "backend", clipboard.Describe(command))
		return nil
	}

	doc := output.Document{Content: content}
	if format != output.FormatPlain {
		info, err := noteStore.Stat()
		if err != nil {
			return err
		}
		doc.Path = info.Path
		if info.Exists {
			doc.Size = info.Size
			modified := info.ModTime
			doc.Modified = &modified
		}
	}

	return output.NewFormatter(format).Format(os.Stdout, doc)
}
