package reconcile

import "cmp"

// Set is an unordered collection of keys.
type Set[K comparable] map[K]struct{}

// NewSet builds a set from keys; duplicates collapse.
func NewSet[K comparable](keys ...K) Set[K] {
	s := make(Set[K], len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts key into the set.
func (s Set[K]) Add(key K) { s[key] = struct{}{} }

// Has reports whether key is in the set.
func (s Set[K]) Has(key K) bool {
	_, ok := s[key]
	return ok
}

// Union returns a new set holding the keys of every given set.
func Union[K comparable](sets ...Set[K]) Set[K] {
	out := make(Set[K])
	for _, s := range sets {
		for k := range s {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted returns the keys in ascending order.
func Sorted[K cmp.Ordered](s Set[K]) []K {
	keys := make([]K, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// Result describes where a single key was found.
type Result[K cmp.Ordered] struct {
	// Key identifies the entity (a movie id, a provider pair, ...).
	Key K `json:"key"`

	// Persisted indicates whether the key exists in the store.
	Persisted bool `json:"persisted"`

	// Observed indicates whether the key was seen in the latest fetch.
	Observed bool `json:"observed"`
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionInsert creates a row for a key that was observed but not persisted.
	ActionInsert ActionType = "insert"
	// ActionDelete removes a row for a key that is persisted but no longer observed.
	ActionDelete ActionType = "delete"
)

// Action represents a planned mutation operation.
type Action[K cmp.Ordered] struct {
	Type   ActionType `json:"type"`
	Key    K          `json:"key"`
	Reason string     `json:"reason"`
}

// Plan contains reconciliation results and planned actions.
type Plan[K cmp.Ordered] struct {
	Results []Result[K] `json:"results"`
	Actions []Action[K] `json:"actions"`
	Summary Summary     `json:"summary"`
}

// Summary provides aggregate statistics for a plan.
type Summary struct {
	// Total is the number of distinct keys across both sides.
	Total int `json:"total"`
	// Unchanged counts keys present on both sides.
	Unchanged int `json:"unchanged"`
	// Inserts counts planned insert actions.
	Inserts int `json:"inserts"`
	// Deletes counts planned delete actions.
	Deletes int `json:"deletes"`
}
