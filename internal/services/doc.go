// Package services implements the query layer that sits between the HTTP
// handlers and the ingested dataset.
//
// DataService wraps one immutable Dataset produced by the ingestion pipeline
// and answers region, year, value and aggregation queries over its tables.
// HealthService reports liveness and whether every table has been loaded.
//
// Errors returned by services are AppErrors so the transport layer can map
// them to Problem Details:
//
//	ErrTypeNotFound    unknown source or missing point value
//	ErrTypeValidation  unknown reducer or value mode
package services
