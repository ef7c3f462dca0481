package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"evmap/internal/config"
)

const (
	ServiceName = "evmap"
	MeterName   = "evmap"
)

// OTelProviders holds the OpenTelemetry providers.
// Tracer and Meter are always usable; they are no-ops when the matching
// signal is disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel sets up tracing and metrics from the telemetry configuration
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", ServiceName),
		slog.String("version", config.AppVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	providers := &OTelProviders{Logger: logger}

	if cfg.EnableTracing {
		if err := initializeTracing(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	if providers.Tracer == nil {
		providers.Tracer = otel.Tracer(MeterName)
	}
	if providers.Meter == nil {
		providers.Meter = otel.Meter(MeterName)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.TraceExporter {
	case "stdout":
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	otel.SetTracerProvider(tp)

	return nil
}

// initializeMetrics wires a Prometheus reader on a private registry so
// repeated initialization never collides on the default registerer.
func initializeMetrics(res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))
	providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	otel.SetMeterProvider(mp)

	return nil
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// IngestMetrics holds the instruments recorded by the ingestion pipeline and the query layer
type IngestMetrics struct {
	RecordsIngested   metric.Int64Counter
	RowsSkipped       metric.Int64Counter
	CellsRejected     metric.Int64Counter
	RegionsReplicated metric.Int64Counter
	IngestDuration    metric.Float64Histogram
	Queries           metric.Int64Counter
}

// NewIngestMetrics creates the pipeline instruments on meter
func NewIngestMetrics(meter metric.Meter) (*IngestMetrics, error) {
	recordsIngested, err := meter.Int64Counter(
		"evmap_records_ingested_total",
		metric.WithDescription("Normalized records produced per source"),
	)
	if err != nil {
		return nil, err
	}

	rowsSkipped, err := meter.Int64Counter(
		"evmap_rows_skipped_total",
		metric.WithDescription("Sheet rows dropped because the region was unresolvable or too short"),
	)
	if err != nil {
		return nil, err
	}

	cellsRejected, err := meter.Int64Counter(
		"evmap_cells_rejected_total",
		metric.WithDescription("Year cells that were empty or non-numeric"),
	)
	if err != nil {
		return nil, err
	}

	regionsReplicated, err := meter.Int64Counter(
		"evmap_regions_replicated_total",
		metric.WithDescription("Coarse regions whose values were copied to their fine children"),
	)
	if err != nil {
		return nil, err
	}

	ingestDuration, err := meter.Float64Histogram(
		"evmap_ingest_duration_seconds",
		metric.WithDescription("Time to parse and normalize one source"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	queries, err := meter.Int64Counter(
		"evmap_queries_total",
		metric.WithDescription("Aggregation queries served"),
	)
	if err != nil {
		return nil, err
	}

	return &IngestMetrics{
		RecordsIngested:   recordsIngested,
		RowsSkipped:       rowsSkipped,
		CellsRejected:     cellsRejected,
		RegionsReplicated: regionsReplicated,
		IngestDuration:    ingestDuration,
		Queries:           queries,
	}, nil
}

// RecordSource records the outcome of parsing one source
func (m *IngestMetrics) RecordSource(ctx context.Context, source string, records, skippedRows, rejectedCells int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.RecordsIngested.Add(ctx, int64(records), attrs)
	m.RowsSkipped.Add(ctx, int64(skippedRows), attrs)
	m.CellsRejected.Add(ctx, int64(rejectedCells), attrs)
	m.IngestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordReplication records how many coarse regions were expanded for a source
func (m *IngestMetrics) RecordReplication(ctx context.Context, source string, replicated int) {
	if m == nil {
		return
	}
	m.RegionsReplicated.Add(ctx, int64(replicated), metric.WithAttributes(attribute.String("source", source)))
}

// RecordQuery counts one aggregation query
func (m *IngestMetrics) RecordQuery(ctx context.Context, source, kind string) {
	if m == nil {
		return
	}
	m.Queries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("kind", kind),
	))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
