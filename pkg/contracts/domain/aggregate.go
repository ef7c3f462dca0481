package domain

import "fmt"

// Reducer selects how values in a year range are combined per region
type Reducer string

const (
	ReducerSum  Reducer = "sum"
	ReducerMean Reducer = "mean"
)

// ParseReducer validates a reducer name; empty means sum
func ParseReducer(s string) (Reducer, error) {
	switch Reducer(s) {
	case "", ReducerSum:
		return ReducerSum, nil
	case ReducerMean:
		return ReducerMean, nil
	}
	return "", fmt.Errorf("unknown reducer %q", s)
}

// ValueMode selects what a snapshot reports for the selected year
type ValueMode string

const (
	// ModeTotal reports the stored value for the selected year
	ModeTotal ValueMode = "total"
	// ModeCumulative sums every available year up to the selected year
	ModeCumulative ValueMode = "cumulative"
)

// ParseValueMode validates a value mode; empty means total
func ParseValueMode(s string) (ValueMode, error) {
	switch ValueMode(s) {
	case "", ModeTotal:
		return ModeTotal, nil
	case ModeCumulative:
		return ModeCumulative, nil
	}
	return "", fmt.Errorf("unsupported value mode %q", s)
}

// AggregateQuery describes a range aggregation request
type AggregateQuery struct {
	Source    Source   `json:"source" validate:"required"`
	Regions   []string `json:"regions"`
	YearStart int      `json:"year_start"`
	YearEnd   int      `json:"year_end"`
	Reducer   Reducer  `json:"reducer"`
}

// RegionValue pairs a region with an aggregated value, used for ordered exports
type RegionValue struct {
	Region string  `json:"region"`
	Label  string  `json:"label,omitempty"`
	Value  float64 `json:"value"`
}
