package source

import (
	"context"
	"errors"
	"fmt"

	"horror-tracker/core/retry"
)

// FetchError reports that a source could not be read within its retry policy.
type FetchError struct {
	Source   string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.Source, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err is, or wraps, a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// Fetch runs fn under policy and converts exhaustion into a FetchError.
func Fetch[T any](ctx context.Context, policy retry.Policy, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	attempts, err := policy.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, &FetchError{Source: name, Attempts: attempts, Err: err}
	}
	return out, nil
}
