package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle the overlay window",
	Long: `Toggle the quicknoted overlay, exactly as Alt+Space does.

A focused overlay is hidden; a hidden or unfocused overlay is shown and
focused. Prints the resulting state. Requires a running quicknoted.`,
	Args: cobra.NoArgs,
	RunE: runToggle,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

func runToggle(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := daemonClient(ctx)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("quicknoted is not running")
	}

	state, err := client.Toggle(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), state)
	return nil
}
