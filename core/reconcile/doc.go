// Package reconcile provides the generic set-diff machinery behind every
// full-replace reconciliation in the update pipeline.
//
// A reconciliation compares two sets of keys: what the store currently holds
// (persisted) and what the latest fetch saw (observed). The goal is always the
// same: after applying the plan, the persisted set equals the observed set.
//
// # Architecture
//
// 1. Engine: Diff builds the union of both sides and reports, per key, where it
// was found.
//
// 2. Plan: PlanDiff turns those results into insert and delete actions plus a
// summary. ApplyPlan executes them through a Mutator, preferring batch methods
// (BatchInserter, BatchDeleter) and falling back to one key at a time. Deletes
// run before inserts. Dry runs roll back the transaction the mutator writes
// through; the plan itself is always applied in full.
//
// 3. Cache: a per-run lookup cache with stampede protection. It is owned by a
// single run and discarded afterwards; results never survive into the next run.
//
// # Usage Example
//
//	persisted := reconcile.NewSet[int64](1)
//	observed := reconcile.NewSet[int64](2)
//	plan := reconcile.PlanDiff(persisted, observed)
//	// plan.Actions: delete 1, insert 2
//	executed, err := reconcile.ApplyPlan(ctx, mutator, plan)
package reconcile
