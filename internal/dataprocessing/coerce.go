package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// missingMarkers are placeholders the statistical exports use for absent observations
var missingMarkers = map[string]struct{}{
	":": {},
	"-": {},
}

// CoerceNumeric converts a raw cell to a finite float.
// It accepts stored numbers and numeric-looking text, and rejects everything else.
func CoerceNumeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if _, missing := missingMarkers[s]; missing {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
