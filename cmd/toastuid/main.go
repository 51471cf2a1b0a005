// Package main is the entry point for the toastuid notification daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jmylchreest/toastui/internal/audio"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/daemon"
	"github.com/jmylchreest/toastui/internal/dbus"
	"github.com/jmylchreest/toastui/internal/history"
	"github.com/jmylchreest/toastui/internal/theme"
	"github.com/jmylchreest/toastui/internal/tui"
)

// Build-time variables
var version = "dev"

type options struct {
	monitor    bool
	configPath string
	logFile    string
	verbose    bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.monitor, "monitor", false, "Mirror notifications sent to another daemon instead of owning the bus name")
	flag.StringVar(&opts.configPath, "config", config.ConfigPath(), "Path to config file")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file (default: discard)")
	flag.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("toastuid version", version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "toastuid:", err)
		os.Exit(1)
	}
}

// newLogger builds the daemon logger. The terminal belongs to the toasts, so
// logs only go to a file.
func newLogger(opts options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	if opts.logFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func run(opts options) error {
	logger, closer, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	slog.SetDefault(logger)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger.Info("starting toastuid", "version", version, "config", opts.configPath, "monitor", opts.monitor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	program := tui.NewProgram(tui.RunOptions{Config: cfg, Logger: logger})

	// Sounds
	player := audio.NewPlayer(logger)
	defer player.Close()
	player.SetVolumePercent(cfg.Audio.Volume)
	soundWatcher := audio.NewWatcher(player, logger)
	watchSounds(soundWatcher, player, cfg, logger)
	soundWatcher.Start(ctx)
	defer soundWatcher.Stop()

	notifier := daemon.NewInternalNotifier(logger)

	var (
		d    *daemon.Daemon
		stop func() error
	)
	if opts.monitor {
		monitor := dbus.NewMonitor(logger)
		d = daemon.New(cfg, program, nil, logger)
		monitor.SetNotifyHandler(d.HandleNotify)
		if err := monitor.Start(); err != nil {
			return err
		}
		stop = monitor.Stop
		notifier.SetNotifyHandler(daemon.DesktopHandler(logger))
	} else {
		server := dbus.NewServer(logger)
		info := dbus.DefaultServerInfo()
		info.Version = version
		server.SetServerInfo(info)

		d = daemon.New(cfg, program, server, logger)
		d.SetPlayer(player)
		server.SetNotifyHandler(d.HandleNotify)
		server.SetCloseHandler(d.HandleClose)
		notifier.SetNotifyHandler(server.NotifyInternal)
		if err := server.Start(); err != nil {
			return err
		}
		stop = server.Stop
	}
	defer func() {
		if err := stop(); err != nil {
			logger.Warn("failed to stop D-Bus endpoint", "error", err)
		}
	}()
	d.SetNotifier(notifier)
	d.Attach(program.Manager())

	// History
	store, err := openHistory(cfg)
	if err != nil {
		logger.Warn("history disabled", "error", err)
	}
	if store != nil {
		defer func() { _ = store.Close() }()
		if cfg.History.Enabled {
			d.SetHistory(store)
		}
	}

	// Config hot reload
	watcher, err := daemon.NewConfigWatcher(opts.configPath, logger)
	if err != nil {
		return err
	}
	themes := theme.NewLoader(logger)
	watcher.SetReloadCallback(func(newCfg *config.Config) {
		d.ApplyConfig(newCfg)
		program.SetTheme(themes.LoadOrDefault(newCfg.Display.Theme).Render())
		player.SetVolumePercent(newCfg.Audio.Volume)
		if store != nil {
			store.SetMaxEntries(newCfg.History.MaxEntries)
			if newCfg.History.Enabled {
				d.SetHistory(store)
			} else {
				d.SetHistory(nil)
			}
		}
		watchSounds(soundWatcher, player, newCfg, logger)
		notifier.NotifyConfigReloaded()
	})
	watcher.SetErrorCallback(notifier.NotifyConfigError)
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("config hot reload disabled", "error", err)
	}
	defer func() { _ = watcher.Stop() }()

	// Startup notices wait for the program to pick them up.
	go notifier.NotifyStartup(version)

	return program.Run()
}

// openHistory opens the history file. The file stays open while history is
// disabled so a reload can turn it back on.
func openHistory(cfg *config.Config) (*history.Store, error) {
	path := cfg.HistoryPath()
	if path == "" {
		return nil, fmt.Errorf("no history path")
	}
	p, err := history.NewJSONLPersistence(path)
	if err != nil {
		return nil, err
	}
	store := history.NewStore(p, cfg.History.MaxEntries)
	if err := store.Hydrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return store, nil
}

// watchSounds points the watcher at the configured sounds and decodes them
// ahead of the first notification.
func watchSounds(w *audio.Watcher, p *audio.Player, cfg *config.Config, logger *slog.Logger) {
	paths := []string{cfg.SoundForUrgency(0), cfg.SoundForUrgency(1), cfg.SoundForUrgency(2)}
	w.Reset(paths...)
	if !cfg.Audio.Enabled {
		return
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := p.Preload(path); err != nil {
			logger.Warn("failed to preload sound", "path", path, "error", err)
		}
	}
}
