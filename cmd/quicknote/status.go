package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/quicknote/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show note and daemon status",
	Long: `Show where the note is stored, how large it is, when it last changed,
and whether quicknoted is running.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// daemonStatus describes quicknoted as seen from the CLI.
type daemonStatus struct {
	running bool
	state   string
	err     error
}

func runStatus(cmd *cobra.Command, args []string) error {
	info, err := noteStore.Stat()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var ds daemonStatus
	client, err := daemonClient(ctx)
	switch {
	case err != nil:
		ds.err = err
	case client != nil:
		ds.running = true
		ds.state, ds.err = client.State(ctx)
	}

	writeStatus(cmd.OutOrStdout(), info, ds, time.Now())
	return nil
}

// writeStatus prints the status report.
func writeStatus(w io.Writer, info store.NoteInfo, ds daemonStatus, now time.Time) {
	fmt.Fprintf(w, "Note:    %s\n", info.Path)
	if info.Exists {
		fmt.Fprintf(w, "Size:    %s\n", humanize.Bytes(uint64(info.Size)))
		fmt.Fprintf(w, "Changed: %s\n", humanize.RelTime(info.ModTime, now, "ago", "from now"))
	} else {
		fmt.Fprintln(w, "Size:    (no note saved yet)")
	}

	switch {
	case ds.err != nil:
		fmt.Fprintf(w, "Daemon:  unknown (%v)\n", ds.err)
	case ds.running:
		fmt.Fprintf(w, "Daemon:  running, overlay %s\n", ds.state)
	default:
		fmt.Fprintln(w, "Daemon:  not running")
	}
}
