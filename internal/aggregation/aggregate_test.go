package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "evmap/internal/errors"
	"evmap/internal/store"
	"evmap/pkg/contracts/domain"
)

func countryTable() *store.Table {
	return store.NewTable(domain.SourceEnvironment, []domain.Record{
		{Region: "PL", Year: 2017, Value: 100},
		{Region: "PL", Year: 2018, Value: 1},
		{Region: "PL", Year: 2019, Value: 2},
		{Region: "PL", Year: 2020, Value: 3},
		{Region: "PL", Year: 2021, Value: 50},
		{Region: "DE", Year: 2018, Value: 10},
		{Region: "DE", Year: 2020, Value: 30},
		{Region: "XX", Year: 2022, Value: 7},
	})
}

func TestRangeAggregate_ZeroFill(t *testing.T) {
	got, err := RangeAggregate(countryTable(), []string{"PL", "DE", "XX"}, 2018, 2020, domain.ReducerSum)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"PL": 6, "DE": 40, "XX": 0}, got)
}

func TestRangeAggregate_Inclusive(t *testing.T) {
	got, err := RangeAggregate(countryTable(), []string{"PL"}, 2019, 2019, domain.ReducerSum)
	require.NoError(t, err)

	assert.Equal(t, 2.0, got["PL"])
}

func TestRangeAggregate_Mean(t *testing.T) {
	got, err := RangeAggregate(countryTable(), []string{"PL", "DE", "FR"}, 2018, 2020, domain.ReducerMean)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, got["PL"], 1e-9)
	assert.InDelta(t, 20.0, got["DE"], 1e-9)
	assert.Equal(t, 0.0, got["FR"])
}

func TestRangeAggregate_DuplicatesAreSummed(t *testing.T) {
	table := store.NewTable(domain.SourceVehicles, []domain.Record{
		{Region: "PL12", Year: 2020, Value: 5},
		{Region: "PL12", Year: 2020, Value: 6},
	})

	got, err := RangeAggregate(table, []string{"pl12"}, 2020, 2020, domain.ReducerSum)
	require.NoError(t, err)
	assert.Equal(t, 11.0, got["PL12"])
}

func TestRangeAggregate_ReversedBoundsAreNotSwapped(t *testing.T) {
	got, err := RangeAggregate(countryTable(), []string{"PL", "DE"}, 2020, 2018, domain.ReducerSum)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"PL": 0, "DE": 0}, got)
}

func TestRangeAggregate_UnknownReducer(t *testing.T) {
	tests := []struct {
		name    string
		regions []string
		start   int
		end     int
	}{
		{"with data", []string{"PL"}, 2018, 2020},
		{"region without data", []string{"XX00"}, 2019, 2019},
		{"empty range", []string{"PL"}, 1990, 1991},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RangeAggregate(countryTable(), tt.regions, tt.start, tt.end, domain.Reducer("median"))
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
		})
	}
}

func TestAggregateAll_UnknownReducer(t *testing.T) {
	for _, rng := range [][2]int{{2018, 2020}, {1990, 1991}} {
		got, err := AggregateAll(countryTable(), rng[0], rng[1], domain.Reducer("median"))
		require.Error(t, err)
		assert.Nil(t, got)
		assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
	}
}

func TestRangeAggregate_EmptyFilter(t *testing.T) {
	got, err := RangeAggregate(countryTable(), nil, 2018, 2020, domain.ReducerSum)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCumulativeUpTo(t *testing.T) {
	tests := []struct {
		name string
		year int
		want map[string]float64
	}{
		{"from earliest year", 2019, map[string]float64{"PL": 103, "DE": 10}},
		{"first year only", 2017, map[string]float64{"PL": 100, "DE": 0}},
		{"before any data", 2010, map[string]float64{"PL": 0, "DE": 0}},
		{"past last year", 2030, map[string]float64{"PL": 156, "DE": 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CumulativeUpTo(countryTable(), []string{"PL", "DE"}, tt.year)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCumulativeUpTo_EmptyTable(t *testing.T) {
	got, err := CumulativeUpTo(store.NewTable(domain.SourceVehicles, nil), []string{"PL"}, 2020)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"PL": 0}, got)
}

func TestAggregateAll(t *testing.T) {
	got, err := AggregateAll(countryTable(), 2018, 2020, domain.ReducerSum)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"PL": 6, "DE": 40}, got, "regions without data in range are absent")
}
