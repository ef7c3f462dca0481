package domain

import (
	"math"
	"strings"
)

// Record is a single normalized (region, year, value) observation
type Record struct {
	Region string  `json:"region" validate:"required"`
	Year   int     `json:"year" validate:"required"`
	Value  float64 `json:"value"`
}

// RecordKey identifies a point lookup in a normalized table
type RecordKey struct {
	Region string
	Year   int
}

// Key returns the point-lookup key of the record
func (r Record) Key() RecordKey {
	return RecordKey{Region: r.Region, Year: r.Year}
}

// Valid reports whether the record satisfies the normalized-record invariants
func (r Record) Valid() bool {
	if r.Region == "" || r.Region != NormalizeRegionCode(r.Region) {
		return false
	}
	return !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0)
}

// NormalizeRegionCode trims surrounding whitespace and upper-cases a region code
func NormalizeRegionCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
