// Package pipeline is the reconciliation engine. It takes the normalized
// output of every source and drives the store: bulk movie upserts, per-theater
// listing diffs, provider set-replace and expiring matches.
//
// Lookups of static reference data go through a reconcile.Cache scoped to one
// run, so nothing is remembered between scheduler cycles.
package pipeline
