package hearth

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Backend is the part of a cache that Fetch needs. Both *Cache and *Shared
// implement it.
type Backend[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool, error)
	Put(ctx context.Context, key K, value V, ttl ...time.Duration) error
}

// Result is what a fallback produced and whether Fetch should store it.
type Result[V any] struct {
	Value  V
	Commit bool
}

// Commit asks Fetch to store v before returning it.
func Commit[V any](v V) Result[V] {
	return Result[V]{Value: v, Commit: true}
}

// Ignore asks Fetch to return v without storing it.
func Ignore[V any](v V) Result[V] {
	return Result[V]{Value: v}
}

// FallbackFunc computes the value for a key the backend does not hold.
type FallbackFunc[K comparable, V any] func(ctx context.Context, key K) (Result[V], error)

// Fetch returns the live value for key, or computes it with fallback on a miss.
//
// A committed result is written with ttl before it is returned; an ignored one
// is returned as is. A failed write does not fail the Fetch: the computed value
// is still returned and the write error is recorded on the span. An error from
// fallback is returned unchanged and nothing is stored. Concurrent Fetches of the same missing key each run fallback and
// each store their own result; the last write wins.
func Fetch[K comparable, V any](ctx context.Context, backend Backend[K, V], key K, fallback FallbackFunc[K, V], ttl ...time.Duration) (V, error) {
	var zero V
	if fallback == nil {
		return zero, ErrNilFallback
	}

	ctx, span := tracerFor(backend).Start(ctx, "Fetch")
	defer span.End()

	value, found, err := backend.Get(ctx, key)
	if err != nil {
		endSpan(span, err)
		return zero, err
	}
	span.SetAttributes(attribute.Bool("fetch.fallback", !found))
	if found {
		endSpan(span, nil)
		return value, nil
	}

	res, err := fallback(ctx, key)
	if err != nil {
		endSpan(span, err)
		return zero, err
	}
	span.SetAttributes(attribute.Bool("fetch.commit", res.Commit))

	if res.Commit {
		if err := backend.Put(ctx, key, res.Value, ttl...); err != nil {
			span.SetAttributes(attribute.Bool("fetch.stored", false))
			endSpan(span, err)
			return res.Value, nil
		}
	}

	endSpan(span, nil)
	return res.Value, nil
}

// tracerFor prefers the tracer the backend was configured with.
func tracerFor(backend any) trace.Tracer {
	if b, ok := backend.(interface{ spanTracer() trace.Tracer }); ok {
		return b.spanTracer()
	}
	return otel.Tracer(instrumentationName)
}
