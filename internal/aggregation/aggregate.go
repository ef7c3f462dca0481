// Package aggregation reduces normalized tables over inclusive year ranges.
//
// Bounds are taken as given: a range with start after end matches nothing,
// so every requested region reports zero. Callers order their bounds.
package aggregation

import (
	"fmt"

	"github.com/montanaflynn/stats"

	apperrors "evmap/internal/errors"
	"evmap/internal/store"
	"evmap/pkg/contracts/domain"
)

// RangeAggregate reduces every record of the requested regions with
// start <= year <= end. Requested regions without a matching record report 0,
// for sum and mean alike, so the result always has one entry per requested region.
func RangeAggregate(t *store.Table, regions []string, start, end int, reducer domain.Reducer) (map[string]float64, error) {
	if err := checkReducer(reducer); err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(regions))
	for _, region := range regions {
		if code := domain.NormalizeRegionCode(region); code != "" {
			wanted[code] = struct{}{}
		}
	}

	grouped := collect(t, start, end, func(region string) bool {
		_, ok := wanted[region]
		return ok
	})

	result := make(map[string]float64, len(wanted))
	for region := range wanted {
		values := grouped[region]
		if len(values) == 0 {
			result[region] = 0
			continue
		}
		v, err := reduce(values, reducer)
		if err != nil {
			return nil, err
		}
		result[region] = v
	}
	return result, nil
}

// CumulativeUpTo sums each region's values from the table's earliest year
// through year inclusive.
func CumulativeUpTo(t *store.Table, regions []string, year int) (map[string]float64, error) {
	years := t.Years()
	start := year + 1
	if len(years) > 0 {
		start = years[0]
	}
	return RangeAggregate(t, regions, start, year, domain.ReducerSum)
}

// AggregateAll reduces every region that has data in the range. Without a
// requested set there is nothing to zero-fill.
func AggregateAll(t *store.Table, start, end int, reducer domain.Reducer) (map[string]float64, error) {
	if err := checkReducer(reducer); err != nil {
		return nil, err
	}

	grouped := collect(t, start, end, func(string) bool { return true })

	result := make(map[string]float64, len(grouped))
	for region, values := range grouped {
		v, err := reduce(values, reducer)
		if err != nil {
			return nil, err
		}
		result[region] = v
	}
	return result, nil
}

func collect(t *store.Table, start, end int, keep func(region string) bool) map[string]stats.Float64Data {
	grouped := make(map[string]stats.Float64Data)
	for rec := range t.All() {
		if rec.Year < start || rec.Year > end || !keep(rec.Region) {
			continue
		}
		grouped[rec.Region] = append(grouped[rec.Region], rec.Value)
	}
	return grouped
}

// checkReducer rejects unknown reducers whether or not the range holds data
func checkReducer(reducer domain.Reducer) error {
	if _, err := domain.ParseReducer(string(reducer)); err != nil {
		return apperrors.NewAppValidationError(err.Error())
	}
	return nil
}

func reduce(values stats.Float64Data, reducer domain.Reducer) (float64, error) {
	switch reducer {
	case domain.ReducerSum, "":
		return stats.Sum(values)
	case domain.ReducerMean:
		return stats.Mean(values)
	default:
		return 0, apperrors.NewAppValidationError(fmt.Sprintf("unknown reducer %q", reducer))
	}
}
