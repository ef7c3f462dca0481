package http

import (
	"context"

	"evmap/internal/dataprocessing"
	"evmap/internal/store"
	"evmap/pkg/contracts/domain"
)

// DataServiceInterface defines the interface for data operations
type DataServiceInterface interface {
	Regions(ctx context.Context, source domain.Source) ([]string, error)
	Years(ctx context.Context, source domain.Source) ([]int, error)
	Value(ctx context.Context, source domain.Source, region string, year int) (float64, error)
	Aggregate(ctx context.Context, q domain.AggregateQuery) (map[string]float64, error)
	Cumulative(ctx context.Context, source domain.Source, regions []string, year int) (map[string]float64, error)
	Snapshot(ctx context.Context, source domain.Source, regions []string, year int, mode domain.ValueMode) (map[string]*float64, error)
	Ranked(ctx context.Context, source domain.Source, start, end int, reducer domain.Reducer) ([]domain.RegionValue, error)
	Table(source domain.Source) (*store.Table, error)
	Names(ctx context.Context) map[string]string
	Diagnostics(ctx context.Context) dataprocessing.Report
}
