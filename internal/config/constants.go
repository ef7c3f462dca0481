package config

import "evmap/pkg/contracts"

// Application constants
const (
	AppName    = "evmap"
	AppVersion = contracts.Version

	// EnvPrefix namespaces environment overrides, e.g. EVMAP_SERVER_PORT
	EnvPrefix = "EVMAP"

	// Input files as published, relative to the data directory
	DefaultVehiclesWorkbook    = "tran_r_elvehst$defaultview_spreadsheet.xlsx"
	DefaultEnvironmentWorkbook = "env_waselvt$defaultview_spreadsheet.xlsx"
	DefaultReferenceGeoJSON    = "NUTS_RG_01M_2021_4326.geojson"

	DefaultDataDir    = "data"
	DefaultExportsDir = "exports"
	DefaultLogsDir    = "logs"

	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	DefaultLogLevel = "info"

	APIBasePath     = "/api"
	MetricsEndpoint = "/metrics"
)
