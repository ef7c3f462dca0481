package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"evmap/internal/config"
	"evmap/internal/dataprocessing"
	apierrors "evmap/internal/errors"
	"evmap/internal/exporter"
	"evmap/internal/infrastructure"
	customMiddleware "evmap/internal/middleware"
	"evmap/internal/services"
	handlers "evmap/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.IngestMetrics
	Dataset       *dataprocessing.Dataset
	DataService   *services.DataService
	HealthService *services.HealthService
	Exporter      *exporter.Exporter
	Router        *chi.Mux
	Server        *http.Server
}

// NewApplication wires logging, telemetry and the exporter. The dataset is
// loaded separately by Ingest so commands can fail fast on unreadable sources.
// A nil logger selects the global infrastructure logger.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		l, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths := cfg.GetPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewIngestMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Exporter:      exporter.NewExporter(paths, exporter.WithBOM(true), exporter.WithLogger(logger)),
		HealthService: services.NewHealthService(config.AppVersion, nil, logger),
	}
	return a, nil
}

// Ingest runs the pipeline once and installs the resulting dataset
func (a *Application) Ingest(ctx context.Context) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	pipeline := dataprocessing.NewPipeline(a.Config,
		dataprocessing.WithPipelineLogger(a.Logger),
		dataprocessing.WithMetrics(a.Metrics),
		dataprocessing.WithTracer(a.OTelProviders.Tracer),
	)

	ds, err := pipeline.Run(ctx)
	if err != nil {
		infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "ingestion failed",
			slog.String("error_type", string(apierrors.TypeOf(err))))
		return err
	}

	a.SetDataset(ds)
	return nil
}

// SetDataset replaces the dataset and the services built on it
func (a *Application) SetDataset(ds *dataprocessing.Dataset) {
	a.Dataset = ds
	a.DataService = services.NewDataService(ds, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(config.AppVersion, a.DataService, a.Logger)
	a.Router = nil
}

// Handler returns the HTTP router, building it on first use
func (a *Application) Handler() http.Handler {
	if a.Router == nil {
		a.setupRouter()
	}
	return a.Router
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger)

	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → CORS → RateLimit
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.CORS(a.getCORSConfig()))

		if a.Config.Server.RateLimitRPS > 0 {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Server.RateLimitRPS,
				a.Config.Server.RateLimitBurst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r, errorHandler)
	})

	r.Handle(config.MetricsEndpoint, handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, errorHandler))
	r.NotFound(errorHandler.NotFound)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(middleware.Timeout(a.Config.Server.WriteTimeout))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)

		if a.DataService == nil {
			a.Logger.Warn("Data routes disabled: no dataset loaded")
			return
		}
		dataHandler := handlers.NewDataHandler(a.DataService, a.Exporter, a.Logger, errorHandler)
		dataHandler.RegisterRoutes(r)
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Addr(),
		Handler:      a.Handler(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// Start starts the HTTP server in the background. cancel is called if the
// listener fails so Run can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	if a.Server == nil {
		a.createServer()
	}

	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("address", a.Server.Addr),
		slog.Bool("metrics", a.OTelProviders.PrometheusHTTP != nil))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()
	return nil
}

// Stop shuts the server down and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}
	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Close flushes telemetry for commands that never start the server
func (a *Application) Close(ctx context.Context) error {
	if a.OTelProviders == nil {
		return nil
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Run serves until ctx is done or an interrupt arrives, then shuts down gracefully
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	return a.Stop(context.Background())
}
