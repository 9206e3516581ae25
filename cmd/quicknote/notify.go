package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify <title> [body]",
	Short: "Show a desktop notification",
	Long: `Show a desktop notification under the configured application identifier.

The notification is sent through a running quicknoted when there is one,
otherwise directly to the notification server.

Examples:
  quicknote notify "Reminder" "Stand-up in 5 minutes"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	title := args[0]
	var body string
	if len(args) > 1 {
		body = args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := daemonClient(ctx)
	if err != nil {
		logger.Debug("daemon lookup failed, notifying directly", "error", err)
	}
	if client != nil {
		return client.ShowNotification(ctx, title, body)
	}

	return newRouter().ShowNotification(ctx, title, body)
}
