package app

import (
	"context"
	"fmt"
	"log/slog"

	"ListingScanner/internal/config"
	"ListingScanner/internal/domain"
	"ListingScanner/internal/infrastructure/browser"
	"ListingScanner/internal/infrastructure/scheduler"
	"ListingScanner/internal/infrastructure/server"
	"ListingScanner/internal/infrastructure/storage"
	"ListingScanner/internal/infrastructure/telegram"
	"ListingScanner/internal/logging"
	"ListingScanner/internal/ports"
	"ListingScanner/internal/readiness"
	"ListingScanner/internal/usecase"
)

// Application wires config to the engine, watcher, and HTTP surface.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	engine  *usecase.Engine
	watcher *usecase.Watcher
	server  *server.Server
	store   *storage.SQLiteSink
	source  *browser.PageSource
}

// New builds the full watch-mode application: browser source, sqlite
// sink, optional notifier, engine, scheduler, HTTP server.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open result store: %w", err)
	}

	source, err := browser.Connect(browser.Config{
		DebuggerURL:    cfg.Browser.DebuggerURL,
		Headless:       cfg.Browser.Headless,
		PageURLPattern: cfg.Browser.PageURLPattern,
	}, logging.Component(baseLogger, "browser"))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChatID,
		)
	}

	engineLogger := logging.Component(baseLogger, "engine")
	engine := usecase.NewEngine(usecase.EngineDeps{
		Source:   source,
		Sink:     store,
		Notifier: notifier,
		Machine:  readiness.NewMachine(&domain.PollState{}, engineLogger),
		Logger:   engineLogger,
	})

	driver := scheduler.NewIntervalScheduler(cfg.Poll.Interval())
	watcher := usecase.NewWatcher(driver, engine, logging.Component(baseLogger, "watcher"))

	srv := server.New(engine, store, logging.Component(baseLogger, "server"))

	return &Application{
		cfg:     cfg,
		logger:  baseLogger,
		engine:  engine,
		watcher: watcher,
		server:  srv,
		store:   store,
		source:  source,
	}, nil
}

// Run starts the watcher and HTTP server and blocks until ctx is
// cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	a.logger.Info("watching",
		"interval", a.cfg.Poll.Interval().String(),
		"addr", a.cfg.Server.Addr,
		"db", a.cfg.Storage.Path,
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Listen(a.cfg.Server.Addr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	a.shutdown()
	return runErr
}

func (a *Application) shutdown() {
	ctx := context.Background()

	if err := a.watcher.Stop(ctx); err != nil {
		a.logger.Warn("stop watcher", "error", err)
	}
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Warn("shutdown server", "error", err)
	}

	// Let in-flight sink/notifier emissions settle before closing.
	a.engine.Drain()

	if err := a.source.Close(); err != nil {
		a.logger.Warn("close browser", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", "error", err)
	}
}

// NewCheckEngine wires a one-shot engine over the provided page source,
// reusing the configured sink and notifier. The returned cleanup closes
// the store.
func NewCheckEngine(cfg config.Config, baseLogger *slog.Logger, source ports.PageSource) (*usecase.Engine, func() error, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open result store: %w", err)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChatID,
		)
	}

	engine := usecase.NewEngine(usecase.EngineDeps{
		Source:   source,
		Sink:     store,
		Notifier: notifier,
		Logger:   logging.Component(baseLogger, "engine"),
	})

	cleanup := func() error {
		engine.Drain()
		return store.Close()
	}
	return engine, cleanup, nil
}
