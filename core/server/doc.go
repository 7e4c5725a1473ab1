// Package server holds the status HTTP server configuration.
//
// The long-running process exposes a small read-only surface (health, last run report,
// archived snapshots). This package only defines where and whether it listens; routes live
// in feature/status.
package server
