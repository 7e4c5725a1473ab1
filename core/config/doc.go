// Package config loads the application configuration.
//
// Values come from environment variables, optionally seeded from a .env
// file. Every field carries its default in a `default` struct tag, so the
// zero-configuration run only needs TMDB_TOKEN. Keys map to variables by
// upper-casing and replacing dots with underscores: tmdb.provider_map is
// TMDB_PROVIDER_MAP, scheduler.interval is SCHEDULER_INTERVAL.
//
// # Sections
//
//   - log, database, storage, archive, server, nats
//   - tmdb: metadata API token, feeds and provider map
//   - browser, cgv, megabox, lotte, unogs: scraping targets and timings
//   - scheduler, retry: run schedule, concurrency caps and fetch retries
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
