// Package config provides configuration management for evmap.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//  1. Default() values matching the published Eurostat exports
//  2. A YAML file (evmap.yaml or configs/evmap.yaml, or an explicit path)
//  3. A .env file in the working directory
//  4. EVMAP_* environment variables
//
// # Environment Variables
//
// Nested fields join their envconfig names with underscores:
//
//	EVMAP_SOURCES_VEHICLES_PATH=/data/ev.xlsx
//	EVMAP_SOURCES_VEHICLES_HEADER_SKIP_ROWS=9
//	EVMAP_SOURCES_ENVIRONMENT_YEAR_COLUMNS=2013:2013,2014:2014
//	EVMAP_SERVER_PORT=9000
//
// # Source Records
//
// Each workbook is described by a SourceConfig: sheet name, header rows to skip,
// the region column, whether it holds names or codes, and a map from column
// identifier to year. Differences between file versions are expressed only here.
package config
