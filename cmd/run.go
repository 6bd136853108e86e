package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recoilctl/internal/config"
	"recoilctl/internal/engine"
	"recoilctl/internal/hotkey"
	"recoilctl/internal/input"
	"recoilctl/internal/notify"
	"recoilctl/internal/osutils"
	"recoilctl/internal/profile"
	"recoilctl/internal/state"
	"recoilctl/internal/tone"
)

// RunCmd starts the engine, the hotkey router and the tray.
type RunCmd struct {
	Backend     string `help:"Input backend: auto, sendinput or robotgo. Overrides the saved setting."`
	Plugins     string `help:"Weapon profile directory." type:"path"`
	Settings    string `help:"User settings file." type:"path"`
	ClickButton string `help:"Button repeated by auto-click." default:"left"`
	Tray        bool   `help:"Show the tray icon." default:"true" negatable:""`
	Sound       bool   `help:"Play toggle tones." default:"true" negatable:""`
	Watch       bool   `help:"Reload profiles when files in the plugin directory change." default:"true" negatable:""`
}

const eventQueueSize = 64

// Run starts the engine loops and the tray and blocks until shutdown.
func (c *RunCmd) Run(logger *zap.Logger) error {
	logger.Info("recoilctl starting", zap.String("version", version))
	if osutils.NeedsElevation() {
		logger.Warn("not running as administrator; elevated games will ignore injected input")
	}

	base := osutils.BaseDir()
	pluginDir := c.Plugins
	if pluginDir == "" {
		pluginDir = filepath.Join(base, osutils.PluginDirName)
	}
	settingsPath := c.Settings
	if settingsPath == "" {
		settingsPath = config.DefaultPath(base)
	}

	cfgMgr := config.NewManager(settingsPath, logger)
	if err := cfgMgr.Load(); err != nil {
		logger.Warn("failed to load settings, using defaults", zap.String("path", settingsPath), zap.Error(err))
	}
	settings := cfgMgr.Get()

	backendName := c.Backend
	if backendName == "" {
		backendName = settings.Backend
	}
	kind, err := input.ParseKind(backendName)
	if err != nil {
		return err
	}
	clickButton, err := input.ParseButton(c.ClickButton)
	if err != nil {
		return err
	}

	backend, capture, err := input.New(kind, logger)
	if err != nil {
		return fmt.Errorf("open input backend: %w", err)
	}
	defer backend.Close()

	queue := notify.NewQueue(eventQueueSize)
	sink := notify.Multi{notify.Log{Logger: logger}, queue}

	st := state.New()
	store := profile.NewStore(profile.SourcesIn(pluginDir), sink, logger)
	if _, err := store.Reload(); err != nil {
		logger.Warn("no weapon profiles loaded; recoil stays idle until a valid file appears",
			zap.String("dir", pluginDir), zap.Error(err))
	}

	link := engine.DefaultLink
	router := hotkey.NewRouter(st, store, sink, logger, hotkey.WithLinkTap(backend, link.From, link.To))
	if err := config.Apply(settings, st, router, store); err != nil {
		logger.Warn("some saved settings were rejected", zap.Error(err))
	}

	eng, err := engine.New(backend, st, store, sink, logger, engine.Options{
		Recoil:    engine.RecoilConfig{Link: link, LogEvery: 10},
		AutoClick: engine.AutoClickConfig{Button: clickButton},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := &host{
		logger:   logger.Named("host"),
		settings: cfgMgr,
		state:    st,
		router:   router,
		store:    store,
	}
	if c.Sound {
		if p, err := tone.NewPlayer(); err != nil {
			logger.Debug("tones disabled", zap.Error(err))
		} else {
			h.tones = tone.NewSink(p, filepath.Join(base, "assets"), logger)
		}
	}
	if c.Tray {
		h.menu = newTrayMenu(router, store, stop)
		cfgMgr.RegisterChangeCallback(h.menu.refresh)
	}
	hostDone := make(chan struct{})
	go func() {
		defer close(hostDone)
		h.run(queue.Events())
	}()

	if err := capture.Start(); err != nil {
		return fmt.Errorf("start input capture: %w", err)
	}

	var watcher *profile.Watcher
	if c.Watch {
		watcher, err = profile.NewWatcher(store, logger)
		if err == nil {
			err = watcher.Start(ctx)
		}
		if err != nil {
			logger.Warn("profile hot reload disabled", zap.Error(err))
			watcher = nil
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })
	g.Go(func() error { return router.Run(gctx, capture.Events()) })

	logger.Info("ready",
		zap.String("backend", string(kind)),
		zap.String("plugins", pluginDir),
		zap.Any("bindings", router.Bindings()))

	if h.menu != nil {
		go func() {
			<-gctx.Done()
			h.menu.stop()
		}()
		h.menu.run()
		stop()
	}

	err = g.Wait()
	if watcher != nil {
		watcher.Stop()
	}
	if cerr := capture.Stop(); cerr != nil {
		logger.Debug("stop capture", zap.Error(cerr))
	}
	queue.Close()
	<-hostDone
	if dropped := queue.Dropped(); dropped > 0 {
		logger.Warn("host events dropped", zap.Int("count", dropped))
	}
	h.persist()

	logger.Info("recoilctl stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
