package services

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"evmap/internal/aggregation"
	"evmap/internal/dataprocessing"
	apperrors "evmap/internal/errors"
	"evmap/internal/geo"
	"evmap/internal/infrastructure"
	"evmap/internal/store"
	"evmap/pkg/contracts/domain"
)

// DataService answers queries over one ingested dataset.
// The dataset is immutable, so a DataService is safe for concurrent use.
type DataService struct {
	dataset *dataprocessing.Dataset
	metrics *infrastructure.IngestMetrics
	logger  *slog.Logger
}

// NewDataService creates a data service over an ingested dataset
func NewDataService(dataset *dataprocessing.Dataset, metrics *infrastructure.IngestMetrics, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("DataService initialized",
		slog.Int("vehicles", dataset.Vehicles.Len()),
		slog.Int("vehicle_countries", dataset.VehicleCountries.Len()),
		slog.Int("environment", dataset.Environment.Len()))

	return &DataService{
		dataset: dataset,
		metrics: metrics,
		logger:  logger.With(slog.String("service", "data")),
	}
}

func (s *DataService) table(source domain.Source) (*store.Table, error) {
	t, ok := s.dataset.Table(source)
	if !ok || t == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("source %q", source)).
			WithContext("source", string(source))
	}
	return t, nil
}

// Regions returns the sorted region codes of a source
func (s *DataService) Regions(ctx context.Context, source domain.Source) ([]string, error) {
	t, err := s.table(source)
	if err != nil {
		return nil, err
	}
	return t.Regions(), nil
}

// Years returns the sorted years of a source
func (s *DataService) Years(ctx context.Context, source domain.Source) ([]int, error) {
	t, err := s.table(source)
	if err != nil {
		return nil, err
	}
	return t.Years(), nil
}

// Value returns the stored value for one region and year
func (s *DataService) Value(ctx context.Context, source domain.Source, region string, year int) (float64, error) {
	t, err := s.table(source)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordQuery(ctx, string(source), "value")

	if !t.HasRegion(region) {
		return 0, apperrors.NewNotFoundError(fmt.Sprintf("region %s", domain.NormalizeRegionCode(region))).
			WithContext("source", string(source))
	}
	v, ok := t.Value(region, year)
	if !ok {
		return 0, apperrors.NewNotFoundError(fmt.Sprintf("value for %s in %d", domain.NormalizeRegionCode(region), year)).
			WithContext("source", string(source))
	}
	return v, nil
}

// Aggregate reduces the requested regions over an inclusive year range.
// Every requested region appears in the result; regions without data report 0.
func (s *DataService) Aggregate(ctx context.Context, q domain.AggregateQuery) (map[string]float64, error) {
	t, err := s.table(q.Source)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordQuery(ctx, string(q.Source), "aggregate")

	result, err := aggregation.RangeAggregate(t, q.Regions, q.YearStart, q.YearEnd, q.Reducer)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "aggregate served",
		slog.String("source", string(q.Source)),
		slog.Int("regions", len(result)),
		slog.Int("year_start", q.YearStart),
		slog.Int("year_end", q.YearEnd),
		slog.String("reducer", string(q.Reducer)))
	return result, nil
}

// Cumulative sums each region from the source's earliest year through year
func (s *DataService) Cumulative(ctx context.Context, source domain.Source, regions []string, year int) (map[string]float64, error) {
	t, err := s.table(source)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordQuery(ctx, string(source), "cumulative")
	return aggregation.CumulativeUpTo(t, regions, year)
}

// AggregateAll reduces every region that has data in the range
func (s *DataService) AggregateAll(ctx context.Context, source domain.Source, start, end int, reducer domain.Reducer) (map[string]float64, error) {
	t, err := s.table(source)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordQuery(ctx, string(source), "aggregate_all")
	return aggregation.AggregateAll(t, start, end, reducer)
}

// Snapshot returns one value per region for the selected year. In total mode a
// region without a stored value maps to nil; cumulative mode always yields a number.
// An empty region list selects every region of the source.
func (s *DataService) Snapshot(ctx context.Context, source domain.Source, regions []string, year int, mode domain.ValueMode) (map[string]*float64, error) {
	t, err := s.table(source)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		regions = t.Regions()
	}
	s.metrics.RecordQuery(ctx, string(source), "snapshot_"+string(mode))

	result := make(map[string]*float64, len(regions))
	switch mode {
	case domain.ModeTotal, "":
		for _, region := range regions {
			code := domain.NormalizeRegionCode(region)
			if code == "" {
				continue
			}
			if v, ok := t.Value(code, year); ok {
				result[code] = &v
			} else {
				result[code] = nil
			}
		}
	case domain.ModeCumulative:
		sums, err := aggregation.CumulativeUpTo(t, regions, year)
		if err != nil {
			return nil, err
		}
		for code, v := range sums {
			result[code] = &v
		}
	default:
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unsupported value mode %q", mode))
	}
	return result, nil
}

// Ranked aggregates every region of a source over the range and returns the
// labelled values sorted by region code
func (s *DataService) Ranked(ctx context.Context, source domain.Source, start, end int, reducer domain.Reducer) ([]domain.RegionValue, error) {
	values, err := s.AggregateAll(ctx, source, start, end, reducer)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.RegionValue, 0, len(values))
	for _, region := range slices.Sorted(maps.Keys(values)) {
		rows = append(rows, domain.RegionValue{
			Region: region,
			Label:  s.Label(region),
			Value:  values[region],
		})
	}
	return rows, nil
}

// Table exposes the normalized table of a source for exports
func (s *DataService) Table(source domain.Source) (*store.Table, error) {
	return s.table(source)
}

// Label returns the display name of a region: the Polish country name when
// known, then the reference dataset name, then the code itself
func (s *DataService) Label(code string) string {
	code = domain.NormalizeRegionCode(code)
	if name, ok := geo.DisplayName(code); ok {
		return name
	}
	if s.dataset.Reference != nil {
		if name, ok := s.dataset.Reference.Name(code); ok {
			return name
		}
	}
	return code
}

// Names returns a label for every region present in any table
func (s *DataService) Names(ctx context.Context) map[string]string {
	names := make(map[string]string)
	for _, source := range domain.Sources() {
		t, err := s.table(source)
		if err != nil {
			continue
		}
		for _, region := range t.Regions() {
			names[region] = s.Label(region)
		}
	}
	return names
}

// Diagnostics returns the ingestion report
func (s *DataService) Diagnostics(ctx context.Context) dataprocessing.Report {
	return s.dataset.Report
}

// Counts returns the record count of every table
func (s *DataService) Counts() map[domain.Source]int {
	counts := make(map[domain.Source]int, len(domain.Sources()))
	for _, source := range domain.Sources() {
		if t, err := s.table(source); err == nil {
			counts[source] = t.Len()
		}
	}
	return counts
}
