package reconcile

import (
	"cmp"
	"context"
	"fmt"
)

// PlanDiff diffs persisted against observed and plans the actions that make
// the persisted side equal to the observed side. It does NOT execute them;
// use ApplyPlan for that.
func PlanDiff[K cmp.Ordered](persisted, observed Set[K]) *Plan[K] {
	results := Diff(persisted, observed)
	summary, actions := buildPlanFromResults(results)

	return &Plan[K]{
		Results: results,
		Actions: actions,
		Summary: summary,
	}
}

// ApplyPlan executes the actions in a plan and returns how many were executed.
// Deletes run before inserts. Batch methods are used when the mutator offers them.
func ApplyPlan[K cmp.Ordered](ctx context.Context, mutator Mutator[K], plan *Plan[K]) (executed int, err error) {
	if plan == nil {
		return 0, nil
	}

	var inserts, deletes []K
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionInsert:
			inserts = append(inserts, action.Key)
		case ActionDelete:
			deletes = append(deletes, action.Key)
		}
	}

	if len(deletes) > 0 {
		if batch, ok := any(mutator).(BatchDeleter[K]); ok {
			if err := batch.DeleteBatch(ctx, deletes); err != nil {
				return executed, fmt.Errorf("failed to batch delete %d keys: %w", len(deletes), err)
			}
			executed += len(deletes)
		} else {
			for _, key := range deletes {
				if err := mutator.Delete(ctx, key); err != nil {
					return executed, fmt.Errorf("failed to delete key %v: %w", key, err)
				}
				executed++
			}
		}
	}

	if len(inserts) > 0 {
		if batch, ok := any(mutator).(BatchInserter[K]); ok {
			if err := batch.InsertBatch(ctx, inserts); err != nil {
				return executed, fmt.Errorf("failed to batch insert %d keys: %w", len(inserts), err)
			}
			executed += len(inserts)
		} else {
			for _, key := range inserts {
				if err := mutator.Insert(ctx, key); err != nil {
					return executed, fmt.Errorf("failed to insert key %v: %w", key, err)
				}
				executed++
			}
		}
	}

	return executed, nil
}

// buildPlanFromResults generates a summary and action plan from diff results.
func buildPlanFromResults[K cmp.Ordered](results []Result[K]) (Summary, []Action[K]) {
	var summary Summary
	var actions []Action[K]

	summary.Total = len(results)

	for _, result := range results {
		switch {
		case result.Persisted && result.Observed:
			summary.Unchanged++
		case result.Observed:
			actions = append(actions, Action[K]{Type: ActionInsert, Key: result.Key, Reason: "observed, not persisted"})
			summary.Inserts++
		case result.Persisted:
			actions = append(actions, Action[K]{Type: ActionDelete, Key: result.Key, Reason: "persisted, no longer observed"})
			summary.Deletes++
		}
	}

	return summary, actions
}
