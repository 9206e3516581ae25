// Package main provides the CLI entrypoint for quicknote.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/quicknote/internal/config"
	"github.com/jmylchreest/quicknote/internal/dbus"
	"github.com/jmylchreest/quicknote/internal/invoke"
	"github.com/jmylchreest/quicknote/internal/model"
	"github.com/jmylchreest/quicknote/internal/notify"
	"github.com/jmylchreest/quicknote/internal/store"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		notesFile  string
		configPath string
	}
	logger *slog.Logger

	// noteStore is the note file this invocation operates on
	noteStore *store.NoteStore
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "quicknote",
	Short: "Quick-note overlay for Linux desktops",
	Long: `quicknote reads and writes the note shown by the quicknoted overlay.

The overlay daemon (quicknoted) toggles its window with Alt+Space. This CLI
edits the same note file, asks the daemon to toggle the overlay, and sends
desktop notifications under the configured application identifier.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		notesPath := globalOpts.notesFile
		if notesPath == "" {
			notesPath, err = config.NotesPath()
			if err != nil {
				return err
			}
		}
		noteStore = store.NewNoteStore(notesPath, logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.notesFile, "notes-file", "",
		"Path to the note file (default: <config dir>/"+config.AppID+"/notes.json)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: <config dir>/"+config.AppID+"/quicknote.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// newRouter returns an invoke router over the local note store.
// Notifications go straight to the notification server.
func newRouter() *invoke.Router {
	return invoke.NewRouter(noteStore, &sessionNotifier{}, logger)
}

// sessionNotifier connects to the session bus on first use.
type sessionNotifier struct {
	dispatcher *notify.Dispatcher
}

func (n *sessionNotifier) Notify(ctx context.Context, title, body string) error {
	if n.dispatcher == nil {
		conn, err := godbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("%w: failed to connect to session bus: %w", model.ErrPlatform, err)
		}
		n.dispatcher = notify.NewDispatcher(cfg, notify.NewDBusSender(conn), logger)
	}
	return n.dispatcher.Notify(ctx, title, body)
}

// daemonClient returns a client for a running quicknoted, or nil if none is running.
func daemonClient(ctx context.Context) (*dbus.Client, error) {
	conn, err := godbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	client := dbus.NewClient(conn)
	running, err := client.Running(ctx)
	if err != nil {
		return nil, err
	}
	if !running {
		return nil, nil
	}
	return client, nil
}
