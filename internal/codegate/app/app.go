package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/codegate/internal/codegate/http"
	"github.com/aussiebroadwan/codegate/internal/codegate/metrics"
	"github.com/aussiebroadwan/codegate/internal/codegate/service"
	"github.com/aussiebroadwan/codegate/internal/codegate/store"
	"github.com/aussiebroadwan/codegate/pkg/httpx"
	"github.com/aussiebroadwan/codegate/pkg/jwtx"
	"github.com/aussiebroadwan/codegate/pkg/secretx"
	"github.com/aussiebroadwan/codegate/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the codegate service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	keys     *secretx.KeyCache
	issuer   *jwtx.Issuer
	verifier jwtx.Verifier
	registry *prometheus.Registry
	metrics  metrics.Recorder

	// Services
	generator           *service.Generator
	claimService        *service.ClaimService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "codegate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.db = db
	app.logger.Info("code store ready", "driver", cfg.Store)

	keys, err := SigningKeys(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.keys = keys
	warmSigningKeys(keys, app.logger)

	app.initMetrics()
	if err := app.initServices(); err != nil {
		_ = db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("codegate starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"session_ttl", app.cfg.TTL(),
		"app_tag", app.cfg.AppTag,
	)
	if app.cfg.AdminToken == "" {
		app.logger.Warn("CODEGATE_ADMIN_TOKEN not set, code generation endpoint is locked")
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down codegate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("codegate stopped")
	return nil
}

// Handler exposes the fully wired router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Close releases the store of an application that was never Run.
func (app *Application) Close() error { return app.db.Close() }

func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.metrics = metrics.Init(app.cfg.MetricsEnabled, app.registry)

	if app.cfg.MetricsEnabled {
		app.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	format, err := app.cfg.CodeFormat()
	if err != nil {
		return err
	}

	app.issuer = jwtx.NewIssuer(app.keys, app.cfg.AppTag)
	app.verifier = jwtx.NewHS256Verifier(app.keys, app.cfg.AppTag)

	app.generator = &service.Generator{
		Store:          app.db,
		Format:         format,
		AllowOverrides: app.cfg.CodeAllowOverrides,
		MaxAttempts:    app.cfg.GenerateMaxAttempts,
		StoreTimeout:   app.cfg.StoreTimeout,
		Metrics:        app.metrics,
	}

	app.claimService = &service.ClaimService{
		Store:        app.db,
		Issuer:       app.issuer,
		Validator:    service.ClaimValidator(format, app.cfg.CodeAllowOverrides),
		SessionTTL:   app.cfg.TTL(),
		Retention:    app.cfg.Retention,
		StoreTimeout: app.cfg.StoreTimeout,
		Metrics:      app.metrics,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.metrics,
	)

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		app.issuer,
		BuildVersion,
		app.db,
		app.metrics,
		app.logger,
	)

	router.ClaimService = app.claimService
	router.Generator = app.generator
	router.AdminToken = app.cfg.AdminToken
	router.AdminTOTPSecret = app.cfg.AdminTOTPSecret
	// Validate has already parsed the list.
	router.TrustedProxies, _ = httpx.ParseTrustedProxies(app.cfg.TrustedProxies)
	if app.cfg.MetricsEnabled {
		router.MetricsHandler = promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
