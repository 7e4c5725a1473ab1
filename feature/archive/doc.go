// Package archive keeps the raw data of each run in object storage.
//
// Every source's output and the run report are written as JSON under
// <prefix>/<runID>/<name>.json. Prune keeps the newest KeepRuns runs.
package archive
