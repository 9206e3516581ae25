// Package main is the entry point for the quicknoted overlay daemon.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/quicknote/internal/config"
	"github.com/jmylchreest/quicknote/internal/daemon"
	"github.com/jmylchreest/quicknote/internal/dbus"
	"github.com/jmylchreest/quicknote/internal/display"
	"github.com/jmylchreest/quicknote/internal/events"
	"github.com/jmylchreest/quicknote/internal/hotkey"
	"github.com/jmylchreest/quicknote/internal/invoke"
	"github.com/jmylchreest/quicknote/internal/model"
	"github.com/jmylchreest/quicknote/internal/notify"
	"github.com/jmylchreest/quicknote/internal/platform"
	"github.com/jmylchreest/quicknote/internal/store"
)

var (
	// Build-time variables
	version = "dev"
)

// registerTimeout bounds the portal shortcut registration, including any
// confirmation dialog the desktop shows.
const registerTimeout = time.Minute

func main() {
	configPath := flag.String("config", "", "Path to config file (default: <config dir>/"+config.AppID+"/quicknote.toml)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		println("quicknoted version", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	os.Exit(run(*configPath, logger))
}

// run starts the daemon and blocks until it exits. Returns the process exit status.
func run(configPath string, logger *slog.Logger) int {
	logger.Info("starting quicknoted", "version", version)

	if configPath == "" {
		var err error
		configPath, err = config.ConfigPath()
		if err != nil {
			logger.Error("failed to resolve config path", "error", err)
			return 1
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		return 1
	}

	notesPath, err := config.NotesPath()
	if err != nil {
		logger.Error("failed to resolve notes path", "error", err)
		return 1
	}

	conn, err := godbus.ConnectSessionBus()
	if err != nil {
		logger.Error("failed to connect to session bus", "error", err)
		return 1
	}
	defer func() { _ = conn.Close() }()

	app := adw.NewApplication(config.AppID, 0)

	// Shared state between GTK main loop and signal handlers
	var (
		service          *dbus.Service
		registrar        *hotkey.PortalRegistrar
		controller       *hotkey.Controller
		overlay          *display.Overlay
		noteWatcher      *store.FileWatcher
		configWatcher    *daemon.ConfigWatcher
		internalNotifier *daemon.InternalNotifier
		running          atomic.Bool
		fatal            atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopAll := func() {
		if configWatcher != nil {
			configWatcher.Stop()
		}
		if noteWatcher != nil {
			_ = noteWatcher.Stop()
		}
		if service != nil {
			_ = service.Stop()
		}
		if registrar != nil {
			_ = registrar.Close()
		}
		if controller != nil {
			controller.Close()
		}
		if overlay != nil {
			overlay.Close()
		}
	}

	fail := func(msg string, err error) {
		logger.Error(msg, "error", err, "kind", string(model.KindOf(err)))
		fatal.Store(true)
		app.Quit()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()

		glib.IdleAdd(func() {
			if running.Load() {
				app.Quit()
			}
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		display.ApplyStyle(filepath.Dir(notesPath), logger)

		noteStore := store.NewNoteStore(notesPath, logger)
		dispatcher := notify.NewDispatcher(cfg, notify.NewDBusSender(conn), logger)
		router := invoke.NewRouter(noteStore, dispatcher, logger)
		internalNotifier = daemon.NewInternalNotifier(dispatcher, logger)

		overlay = display.NewOverlay(&app.Application, cfg.Window, router, logger)
		bus := events.NewBus(logger)
		controller = hotkey.NewController(cfg.ToggleMode(), logger)

		overlay.SetFocusCallback(controller.OnFocusChanged)
		overlay.SetVisibilityCallback(controller.OnVisibilityChanged)
		overlay.SetErrorCallback(internalNotifier.NotifyNoteError)

		// Event mode: the front-end makes the toggle decision itself.
		bus.Subscribe(events.ToggleWindow, func() {
			state, err := overlay.ToggleSelf()
			if err != nil {
				logger.Warn("toggle-window failed", "error", err, "state", state.String())
			}
		})
		bus.Subscribe(events.NoteChanged, overlay.Reload)

		// Registration waits on the portal, so it runs off the main loop.
		registrar = hotkey.NewPortalRegistrar(conn, "Toggle the "+cfg.App.Name+" overlay", logger)
		handle := platform.Handle{Window: overlay, Shortcuts: registrar, Events: bus}
		go func() {
			regCtx, regCancel := context.WithTimeout(ctx, registerTimeout)
			defer regCancel()
			if err := controller.Initialize(regCtx, handle); err != nil {
				glib.IdleAdd(func() {
					fail("failed to initialize global hotkey", err)
				})
				return
			}
			logger.Info("quicknoted ready",
				"dbus_name", dbus.ServiceName,
				"hotkey", controller.Binding().String(),
				"mode", string(controller.Mode()),
				"notes", notesPath,
			)
		}()

		service = dbus.NewService(conn, router, controller, logger)
		if err := service.Start(); err != nil {
			fail("failed to start D-Bus service", err)
			return
		}

		controller.SetStateListener(func(state model.VisibilityState) {
			if err := service.EmitStateChanged(state); err != nil {
				logger.Debug("failed to emit state change", "error", err)
			}
		})
		bus.Subscribe(events.NoteChanged, func() {
			if err := service.EmitNoteChanged(); err != nil {
				logger.Debug("failed to emit note change", "error", err)
			}
		})

		noteWatcher, err = store.NewFileWatcher(notesPath, logger)
		if err != nil {
			logger.Warn("failed to create note watcher", "error", err)
		} else {
			noteWatcher.SetChangeCallback(func() {
				bus.Emit(events.NoteChanged)
			})
			if err := noteWatcher.Start(); err != nil {
				logger.Warn("failed to start note watcher", "error", err)
			}
		}

		configWatcher = daemon.NewConfigWatcher(configPath, logger)
		configWatcher.SetReloadCallback(func(newConfig *config.Config, changed []string) {
			if len(changed) == 0 {
				return
			}
			dispatcher.UpdateConfig(newConfig)
			if slices.Contains(changed, daemon.SectionHotkey) {
				if err := controller.SetMode(newConfig.ToggleMode()); err != nil {
					logger.Warn("failed to apply toggle mode", "error", err)
				}
			}
			if slices.Contains(changed, daemon.SectionWindow) {
				logger.Warn("window settings take effect after restart")
			}
			internalNotifier.NotifyConfigReloaded()
		})
		configWatcher.SetErrorCallback(internalNotifier.NotifyConfigError)
		if err := configWatcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}

		// The overlay is hidden, not closed, so the application stays alive.
		app.Hold()
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		stopAll()
		running.Store(false)
	})

	status := app.Run(os.Args[:1])
	cancel()

	if fatal.Load() {
		return 1
	}
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}

	logger.Info("quicknoted stopped")
	return 0
}
