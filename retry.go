package hearth

import (
	"context"

	"goflare.io/hearth/internal/retrier"
)

// RetryPolicy configures RetryFallback.
type RetryPolicy = retrier.Policy

// Backoff strategies for RetryPolicy.Strategy.
const (
	ExponentialBackoff = retrier.ExponentialBackoff
	LinearBackoff      = retrier.LinearBackoff
	FibonacciBackoff   = retrier.FibonacciBackoff
)

// ErrRetriesExhausted wraps the last fallback error once RetryFallback gives up.
var ErrRetriesExhausted = retrier.ErrExhausted

// DefaultRetryPolicy retries three times with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return retrier.DefaultPolicy()
}

// Temporary marks err as worth retrying under a policy without a Retryable
// func. The original error stays reachable through errors.Is.
func Temporary(err error) error {
	return retrier.MarkTemporary(err)
}

// RetryFallback runs fallback again while it fails with a retryable error.
// Errors that are not retryable are returned unchanged on the first failure.
func RetryFallback[K comparable, V any](fallback FallbackFunc[K, V], policy RetryPolicy) (FallbackFunc[K, V], error) {
	if fallback == nil {
		return nil, ErrNilFallback
	}

	r, err := retrier.New(policy)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, key K) (Result[V], error) {
		var res Result[V]
		err := r.Run(ctx, func(ctx context.Context) error {
			var err error
			res, err = fallback(ctx, key)
			return err
		})
		if err != nil {
			return Result[V]{}, err
		}
		return res, nil
	}, nil
}
