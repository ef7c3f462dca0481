package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"evmap/internal/config"
	"evmap/internal/geo"
	"evmap/internal/infrastructure"
	"evmap/internal/store"
	"evmap/pkg/contracts/domain"
)

// Report collects the ingestion diagnostics
type Report struct {
	Sources    map[domain.Source]ParseStats `json:"sources"`
	Completion CompletionReport             `json:"completion"`
}

// Dataset is the immutable result of one ingestion run
type Dataset struct {
	Vehicles         *store.Table
	VehicleCountries *store.Table
	Environment      *store.Table
	Hierarchy        *Hierarchy
	Names            *NameIndex
	Reference        *geo.Reference
	Report           Report
}

// Table returns the table for a source
func (d *Dataset) Table(source domain.Source) (*store.Table, bool) {
	switch source {
	case domain.SourceVehicles:
		return d.Vehicles, true
	case domain.SourceVehicleCountries:
		return d.VehicleCountries, true
	case domain.SourceEnvironment:
		return d.Environment, true
	}
	return nil, false
}

// Pipeline turns the two workbooks and the reference dataset into a Dataset
type Pipeline struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *infrastructure.IngestMetrics
	tracer  trace.Tracer
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the pipeline logger
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics records ingestion counters on m
func WithMetrics(m *infrastructure.IngestMetrics) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithTracer sets the tracer used for ingestion spans
func WithTracer(tracer trace.Tracer) PipelineOption {
	return func(p *Pipeline) {
		p.tracer = tracer
	}
}

// NewPipeline creates a pipeline over an already validated configuration
func NewPipeline(cfg *config.Config, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		logger: slog.Default(),
		tracer: otel.Tracer(infrastructure.MeterName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ingests every source once. Only SourceUnavailable (or a cancelled
// context) is returned; skipped rows, unresolved names and hierarchy gaps are
// reported in Dataset.Report.
//
// The reference dataset and the vehicle sheet load in parallel. The environment
// sheet waits for the vehicle sheet because its name index may be derived from it.
func (p *Pipeline) Run(ctx context.Context) (*Dataset, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := p.tracer.Start(ctx, "ingest")
	defer span.End()

	start := time.Now()
	logger := infrastructure.WithComponent(p.logger, "ingest")
	paths := p.cfg.GetPaths()

	vehiclesCfg := p.cfg.Sources.Vehicles
	vehiclesCfg.Path = paths.GetDataPath(vehiclesCfg.Path)
	environmentCfg := p.cfg.Sources.Environment
	environmentCfg.Path = paths.GetDataPath(environmentCfg.Path)
	referenceCfg := p.cfg.Reference
	referenceCfg.GeoJSONPath = paths.GetDataPath(referenceCfg.GeoJSONPath)

	var (
		reference *geo.Reference
		vehicles  *ParseResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ref, err := geo.LoadReference(gctx, referenceCfg)
		reference = ref
		return err
	})
	g.Go(func() error {
		res, err := p.parse(gctx, domain.SourceVehicles, vehiclesCfg)
		vehicles = res
		return err
	})
	if err := g.Wait(); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	var derived map[string]string
	if p.cfg.Sources.DeriveNames {
		derived = vehicles.Labels
	}
	names := NewNameIndex(derived)

	environment, err := p.parse(ctx, domain.SourceEnvironment, environmentCfg, WithResolver(names))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	hierarchy := NewHierarchy(reference.CodesAtLevel(p.cfg.Reference.FineLevel), p.cfg.Hierarchy)
	countries, regional := SplitByLength(vehicles.Records, CountryCodeLength)
	fine, completion := CompleteHierarchy(regional, hierarchy)

	p.metrics.RecordReplication(ctx, string(domain.SourceVehicles), len(completion.Replicated))
	if len(completion.DroppedCoarse) > 0 {
		logger.WarnContext(ctx, "coarse regions without known children dropped",
			slog.Any("codes", completion.DroppedCoarse))
	}

	ds := &Dataset{
		Vehicles:         store.NewTable(domain.SourceVehicles, fine),
		VehicleCountries: store.NewTable(domain.SourceVehicleCountries, countries),
		Environment:      store.NewTable(domain.SourceEnvironment, environment.Records),
		Hierarchy:        hierarchy,
		Names:            names,
		Reference:        reference,
		Report: Report{
			Sources: map[domain.Source]ParseStats{
				domain.SourceVehicles:    vehicles.Stats,
				domain.SourceEnvironment: environment.Stats,
			},
			Completion: completion,
		},
	}

	span.SetAttributes(
		attribute.Int("vehicles.records", ds.Vehicles.Len()),
		attribute.Int("vehicle_countries.records", ds.VehicleCountries.Len()),
		attribute.Int("environment.records", ds.Environment.Len()),
		attribute.Int("completion.replicated", len(completion.Replicated)),
	)
	logger.InfoContext(ctx, "ingestion complete",
		slog.Int("vehicles", ds.Vehicles.Len()),
		slog.Int("vehicle_countries", ds.VehicleCountries.Len()),
		slog.Int("environment", ds.Environment.Len()),
		slog.Int("reference_regions", reference.Len()),
		slog.Int("replicated", len(completion.Replicated)),
		slog.Int("superseded", len(completion.SupersededCoarse)),
		slog.Int("dropped", len(completion.DroppedCoarse)),
		slog.Duration("duration", time.Since(start)))

	return ds, nil
}

func (p *Pipeline) parse(ctx context.Context, source domain.Source, cfg config.SourceConfig, opts ...SheetOption) (*ParseResult, error) {
	ctx, span := p.tracer.Start(ctx, "parse_sheet", trace.WithAttributes(
		attribute.String("source", string(source)),
		attribute.String("sheet", cfg.SheetName),
	))
	defer span.End()

	start := time.Now()
	opts = append(opts, WithLogger(p.logger))
	res, err := ParseSource(ctx, source, cfg, opts...)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	p.metrics.RecordSource(ctx, string(source), res.Stats.Records,
		res.Stats.RowsSkipped+res.Stats.Unresolved, res.Stats.CellsSkipped, time.Since(start))
	return res, nil
}
