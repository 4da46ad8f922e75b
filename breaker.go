package hearth

import (
	"context"

	"github.com/sony/gobreaker"
)

// BreakerFallback guards fallback with a circuit breaker built from settings.
//
// While the breaker is closed, fallback's result and error pass through
// unchanged. Once it opens, calls fail fast with gobreaker.ErrOpenState (or
// gobreaker.ErrTooManyRequests while half-open) without running fallback.
func BreakerFallback[K comparable, V any](fallback FallbackFunc[K, V], settings gobreaker.Settings) (FallbackFunc[K, V], error) {
	if fallback == nil {
		return nil, ErrNilFallback
	}

	cb := gobreaker.NewCircuitBreaker(settings)
	return func(ctx context.Context, key K) (Result[V], error) {
		out, err := cb.Execute(func() (any, error) {
			return fallback(ctx, key)
		})
		if err != nil {
			return Result[V]{}, err
		}
		return out.(Result[V]), nil
	}, nil
}
