// Package cli provides the initialization shared by the fintrack command:
// logging, .env loading, configuration, and wiring the store to its
// session backend and event publisher.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

const cacheCleanupInterval = time.Minute

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger. Unknown levels fall back to info.
func SetupLogger(level string, w io.Writer) *log.Logger {
	lvl, err := log.ParseLevel(level)
	cfg := log.DefaultConfig()
	cfg.Level = lvl
	if w != nil {
		cfg.Handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App bundles the store with the resources that must be released on exit.
type App struct {
	Store    *store.Store
	Config   *config.Config
	Logger   *log.Logger
	cleanups []func() error
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	a.Store.Close()
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			a.Logger.Warn("Cleanup failed", log.FieldError, err)
		}
	}
}

// NewApp builds the session backend, the optional event publisher and the
// store from cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Nop()
	}
	app := &App{Config: cfg, Logger: logger.WithComponent(log.ComponentCLI)}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create session backend: %w", err)
	}
	if result.Cleanup != nil {
		app.cleanups = append(app.cleanups, result.Cleanup)
	}

	notifier := InitNotifier(logger, cfg)
	if p, ok := notifier.(*events.Publisher); ok {
		app.cleanups = append(app.cleanups, p.Close)
	}

	manager := cache.NewManager(logger)

	st, err := store.New(ctx, store.Options{
		BaseURL:            cfg.APIBaseURL(),
		Timeout:            cfg.APITimeout,
		Sessions:           result.Store,
		Notifier:           notifier,
		Logger:             logger,
		CacheManager:       manager,
		RefDataTTL:         cfg.RefDataTTL,
		RefDataCacheSize:   cfg.RefDataCacheSize,
		AlertClearDelay:    cfg.AlertClearDelay,
		LoginRedirectDelay: cfg.LoginRedirectDelay,
	})
	if err != nil {
		for i := len(app.cleanups) - 1; i >= 0; i-- {
			_ = app.cleanups[i]()
		}
		return nil, fmt.Errorf("create store: %w", err)
	}
	app.Store = st

	// Caches are registered by store.New, so cleanup starts afterwards.
	manager.StartCleanup(cacheCleanupInterval)
	app.cleanups = append(app.cleanups, func() error {
		manager.Stop()
		return nil
	})
	return app, nil
}

// InitNotifier connects to AMQP when configured. A broker that cannot be
// reached degrades to a no-op notifier.
func InitNotifier(logger *log.Logger, cfg *config.Config) events.Notifier {
	if cfg.AMQPURL == "" {
		return events.Nop{}
	}
	publisher, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	if err != nil {
		logger.Warn("Failed to connect to AMQP, events disabled",
			log.FieldError, err,
			"exchange", cfg.AMQPExchange)
		return events.Nop{}
	}
	logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange)
	return publisher
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
