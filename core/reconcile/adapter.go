package reconcile

import (
	"cmp"
	"context"
)

// Mutator applies single-key actions against a store.
type Mutator[K cmp.Ordered] interface {
	Insert(ctx context.Context, key K) error
	Delete(ctx context.Context, key K) error
}

// BatchInserter is implemented by mutators that can insert many keys at once.
type BatchInserter[K cmp.Ordered] interface {
	InsertBatch(ctx context.Context, keys []K) error
}

// BatchDeleter is implemented by mutators that can delete many keys at once.
type BatchDeleter[K cmp.Ordered] interface {
	DeleteBatch(ctx context.Context, keys []K) error
}
