// Package app wires configuration, logging, telemetry, the ingestion pipeline
// and the HTTP API into one Application.
//
// # Initialization Flow
//
//  1. NewApplication: logger, directories, OpenTelemetry, ingest metrics, exporter
//  2. Ingest: run the pipeline once and build the data and health services
//  3. Handler: build the chi router (middleware, /api routes, /metrics)
//  4. Run: serve until SIGINT/SIGTERM, then shut down gracefully
//
// # Usage
//
//	a, err := app.NewApplication(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	if err := a.Ingest(ctx); err != nil {
//	    return err
//	}
//	return a.Run(ctx)
package app
