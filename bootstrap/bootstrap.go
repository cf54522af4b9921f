// Package bootstrap wires all dependencies and starts the daemon: config,
// logging, storage, the schema and method registries, alert sources, and
// the HTTP server.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pelagos/shoal/adapters/memory"
	"github.com/pelagos/shoal/adapters/metrics"
	"github.com/pelagos/shoal/adapters/sqlite"
	"github.com/pelagos/shoal/config"
	"github.com/pelagos/shoal/core/alert"
	"github.com/pelagos/shoal/core/method"
	"github.com/pelagos/shoal/core/schema"
	"github.com/pelagos/shoal/domain/tunable"
	"github.com/pelagos/shoal/web"
)

// App represents the running daemon.
type App struct {
	Logger  zerolog.Logger
	Config  *config.Holder
	DB      *sqlite.DB // nil with the memory driver
	Store   tunable.Store
	Methods *method.Registry
	Alerts  *alert.Service
	Metrics *metrics.Collector

	HTTPServer *http.Server
}

// New creates and initializes the daemon from a config file path. The
// schema resolution pass runs here: a declaration fault aborts startup.
func New(configPath string) (*App, error) {
	logger := bootLogger()

	holder, err := config.NewHolder(configPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := holder.Get()

	logger = newLogger(cfg.Logging)
	logger.Info().Msg("initializing shoald")

	a := &App{
		Logger: logger,
		Config: holder,
	}

	if err := a.initStore(cfg); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}

	if err := a.initEngine(cfg); err != nil {
		a.Close()
		return nil, err
	}

	a.initAlerts()
	a.initHTTPServer(cfg)

	return a, nil
}

// bootLogger logs during startup, before the configured logger exists.
func bootLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func (a *App) initStore(cfg *config.Config) error {
	if cfg.Database.Driver == "memory" {
		a.Store = memory.NewTunableStore()
		a.Logger.Info().Msg("using in-memory store")
		return nil
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	if err := db.Bootstrap(); err != nil {
		db.Close()
		return err
	}

	a.DB = db
	a.Store = sqlite.NewTunableStore(db)
	a.Logger.Info().Str("path", cfg.Database.Path).Msg("database initialized")
	return nil
}

// initEngine declares every schema and method and runs the one-time
// resolution pass.
func (a *App) initEngine(cfg *config.Config) error {
	schemas := schema.NewSchemas()
	registry := method.NewRegistry(schemas, a.Logger)
	if a.Metrics != nil {
		registry.SetMetrics(a.Metrics)
	}

	// Operator-supplied schema definitions register before services so
	// services can reference them.
	if cfg.Schemas.Dir != "" {
		extra, err := schema.ParseDir(cfg.Schemas.Dir)
		if err != nil {
			return fmt.Errorf("parse schema dir: %w", err)
		}
		for _, s := range extra {
			if err := schemas.Add(s); err != nil {
				return fmt.Errorf("register schema %q: %w", s.Name(), err)
			}
		}
		a.Logger.Info().Int("schemas", len(extra)).Str("dir", cfg.Schemas.Dir).
			Msg("loaded schema definitions")
	}

	svc := tunable.NewService(a.Store, a.Logger)
	if err := svc.RegisterMethods(registry); err != nil {
		return fmt.Errorf("register tunable methods: %w", err)
	}

	if err := registry.Resolve(); err != nil {
		return fmt.Errorf("resolve schemas: %w", err)
	}

	a.Methods = registry
	return nil
}

func (a *App) initAlerts() {
	a.Alerts = alert.NewService(a.Logger)
	if a.Metrics != nil {
		a.Alerts.SetMetrics(a.Metrics)
	}
	a.Alerts.AddSource(tunable.NewLoaderRebootSource(a.Store))
}

func (a *App) initHTTPServer(cfg *config.Config) {
	handler := web.NewHandler(web.Deps{
		Methods:     a.Methods,
		Alerts:      a.Alerts,
		Collector:   a.Metrics,
		MetricsPath: cfg.Metrics.Path,
		Logger:      a.Logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	a.Logger.Info().Str("addr", addr).Msg("http server configured")
}

// Run starts the HTTP server and background loops and blocks until the
// context is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	cfg := a.Config.Get()

	if err := a.Config.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch disabled")
	}
	a.Config.WatchSignals()
	if a.Metrics != nil {
		a.Config.OnChange(func(*config.Config) {
			a.Metrics.ConfigReloads.Inc()
			a.Metrics.ConfigLastReload.SetToCurrentTime()
		})
		a.Config.OnReloadError(func(error) {
			a.Metrics.ConfigReloadErrors.Inc()
		})
	}

	alertCtx, stopAlerts := context.WithCancel(ctx)
	defer stopAlerts()
	if cfg.Alerts.Enabled {
		a.Alerts.Process(alertCtx)
		go a.Alerts.Run(alertCtx, cfg.Alerts.Interval)
		a.Logger.Info().Dur("interval", cfg.Alerts.Interval).Msg("alert checks started")
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("http server listening")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().Err(err).Msg("http server shutdown")
	}
	return nil
}

// Close releases resources. Safe to call after a failed New.
func (a *App) Close() {
	if a.Config != nil {
		a.Config.Stop()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
