// Package status exposes the pipeline's state over HTTP.
//
//	GET /health                      liveness and last run outcome
//	GET /runs/latest                 report of the most recent run
//	GET /runs/:id/snapshots/:name    archived raw data of a run
//
// Routes under /runs require X-API-Key when server.api_key is set.
package status
