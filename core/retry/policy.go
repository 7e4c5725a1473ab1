package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how many times an operation is tried and how long to wait
// between tries. The zero value runs the operation exactly once.
type Policy struct {
	Attempts   int
	Base       time.Duration
	Multiplier float64
	Max        time.Duration

	// Timer waits between attempts. Nil means a real timer.
	Timer backoff.Timer
}

// Default is 3 attempts with delays of 4s, 8s and 10s.
func Default() Policy {
	return Policy{Attempts: 3, Base: 4 * time.Second, Multiplier: 1, Max: 10 * time.Second}
}

// Permanent wraps err so Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p *backoff.PermanentError
	return errors.As(err, &p)
}

// exponential returns the delay sequence: Base scaled by Multiplier, doubling
// on every retry, never below Base and never above Max.
func (p Policy) exponential() *backoff.ExponentialBackOff {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 1
	}
	initial := max(time.Duration(float64(p.Base)*mult), p.Base)
	ceiling := p.Max
	if ceiling <= 0 {
		ceiling = time.Duration(math.MaxInt64)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(initial, ceiling)
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = ceiling
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Delay returns the wait before retry n (1-based).
func (p Policy) Delay(n int) time.Duration {
	b := p.exponential()
	d := b.NextBackOff()
	for i := 1; i < n; i++ {
		d = b.NextBackOff()
	}
	return d
}

// Do runs fn until it succeeds, returns a permanent error, the context is done,
// or the attempts are exhausted. It returns the number of attempts made and the
// last error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	attempts := max(p.Attempts, 1)

	var (
		n    int
		last error
	)
	op := func() error {
		n++
		last = fn(ctx)
		return last
	}

	b := backoff.WithContext(backoff.WithMaxRetries(p.exponential(), uint64(attempts-1)), ctx)
	err := backoff.RetryNotifyWithTimer(op, b, nil, p.Timer)
	if err == nil {
		return n, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) && last != nil && !errors.Is(last, ctxErr) {
		return n, errors.Join(last, ctxErr)
	}
	return n, err
}
