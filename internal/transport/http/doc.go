// Package http implements the read-only query API over the ingested dataset.
//
// Handlers stay thin: they parse path and query parameters, call the data
// service and render JSON with go-chi/render. Every failure is rendered as
// RFC 7807 Problem Details through the shared error handler.
//
// # Routes
//
//	GET /api/health
//	GET /api/health/ready
//	GET /api/names
//	GET /api/diagnostics
//	GET /api/sources/{source}/regions
//	GET /api/sources/{source}/years
//	GET /api/sources/{source}/value?region=&year=
//	GET /api/sources/{source}/aggregate?regions=&from=&to=&reducer=
//	GET /api/sources/{source}/cumulative?regions=&year=
//	GET /api/sources/{source}/snapshot?regions=&year=&mode=
//	GET /api/sources/{source}/export?format=&from=&to=&reducer=
//
// Region lists are comma separated. Year bounds are inclusive and must be
// ordered; from > to is rejected rather than swapped.
package http
