// Package orchestrator runs the update pipeline.
//
// A run starts the four independent fetch tasks (upcoming-api,
// expiring-scrape, theater-listings, provider-listings) under a weighted
// semaphore. Each task normalizes and reconciles its own data. Once
// theater-listings has settled, theater-reconcile runs over the chains that
// were fetched, or is skipped when none were. Failures are recorded in the
// run's Report and never abort other tasks.
//
// Loop repeats runs on a fixed interval and survives failed or panicking
// runs by sleeping a recovery interval instead.
package orchestrator
