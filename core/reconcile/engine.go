package reconcile

import (
	"cmp"
	"slices"
)

// Diff computes one Result per key in the union of persisted and observed,
// sorted by key for deterministic output.
func Diff[K cmp.Ordered](persisted, observed Set[K]) []Result[K] {
	union := buildUnion(persisted, observed)

	results := make([]Result[K], 0, len(union))
	for key := range union {
		results = append(results, buildResult(key, persisted, observed))
	}

	slices.SortFunc(results, func(a, b Result[K]) int {
		return cmp.Compare(a.Key, b.Key)
	})

	return results
}

// buildUnion creates a union of the keys on both sides.
func buildUnion[K comparable](persisted, observed Set[K]) Set[K] {
	return Union(persisted, observed)
}

// buildResult creates a result for a single key.
func buildResult[K cmp.Ordered](key K, persisted, observed Set[K]) Result[K] {
	return Result[K]{
		Key:       key,
		Persisted: persisted.Has(key),
		Observed:  observed.Has(key),
	}
}

func sortKeys[K cmp.Ordered](keys []K) {
	slices.Sort(keys)
}
