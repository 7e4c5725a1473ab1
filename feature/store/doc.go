// Package store persists the pipeline's results through gorm.
//
// Bulk movie upserts stage the batch into a temporary table and merge it into
// movie with a single INSERT ... ON CONFLICT statement. Theater listings are
// diffed per theater with the core/reconcile planner; provider listings are
// set-replaced with anti-joins against a staged pair table. Every operation
// runs in its own transaction and failures surface as *PersistenceError.
//
// The SQL is kept to the subset shared by Postgres and SQLite so the same
// store runs against the production database and in-memory test databases.
package store
