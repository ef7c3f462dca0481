package domain

import "fmt"

// Source names one of the normalized tables produced by ingestion
type Source string

const (
	// SourceVehicles is the fine-grained (NUTS2) vehicle fleet table
	SourceVehicles Source = "vehicles"
	// SourceVehicleCountries holds the national rows of the vehicle workbook
	SourceVehicleCountries Source = "vehicle-countries"
	// SourceEnvironment is the country-level environment table
	SourceEnvironment Source = "environment"
)

// Sources lists every table in a stable order
func Sources() []Source {
	return []Source{SourceVehicles, SourceVehicleCountries, SourceEnvironment}
}

// ParseSource validates a source name
func ParseSource(s string) (Source, error) {
	for _, src := range Sources() {
		if string(src) == s {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown source %q", s)
}
