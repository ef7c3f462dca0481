// Package dataprocessing turns the vehicle and environment workbooks into
// normalized record tables.
//
// # Architecture
//
// Ingestion is split into small stages:
//
// 1. Sheet: streams one worksheet, skips the descriptive rows above the header
// and emits one Record per numeric year cell
// 2. Resolver: maps region codes, or country names for the environment sheet,
// onto canonical codes
// 3. Hierarchy: groups fine NUTS codes under their coarse parent, with
// configurable grouping overrides such as FRY
// 4. CompleteHierarchy: replicates coarse rows onto children that have no
// data of their own
// 5. Pipeline: runs the stages once and assembles a Dataset
//
// # Usage
//
//	pipeline := dataprocessing.NewPipeline(cfg,
//	    dataprocessing.WithPipelineLogger(logger),
//	    dataprocessing.WithMetrics(metrics),
//	)
//	ds, err := pipeline.Run(ctx)
//	if errors.IsSourceUnavailable(err) {
//	    // a workbook or the reference file could not be read
//	}
//
// # Data Flow
//
//	vehicles.xlsx ─┬─ Sheet ─ SplitByLength ─┬─ countries ───────────────── VehicleCountries
//	               │                         └─ regions ─ CompleteHierarchy ─ Vehicles
//	               └─ labels ─ NameIndex
//	environment.xlsx ─ Sheet(NameIndex) ──────────────────────────────────── Environment
//
// # Error Handling
//
// Only SourceUnavailable errors leave Run. Malformed rows, rejected cells,
// unresolved names and hierarchy gaps are counted in Dataset.Report and
// ingestion continues.
package dataprocessing
