// Package hearth provides an in-memory key/value cache with per-entry
// expiration, owned by a single goroutine.
//
// Every operation on a Cache is serialized through one mailbox. Put, Delete and
// ResetStats are fire-and-forget: they return once the message is queued and
// the error only reports whether it could be queued. Get, Stats and
// CleanupExpired wait for the answer, bounded by the context deadline or the
// configured call timeout.
package hearth

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"goflare.io/hearth/internal/cache/actor"
	"goflare.io/hearth/internal/config"
	"goflare.io/hearth/internal/models"
)

const instrumentationName = "goflare.io/hearth"

// Stats is a point-in-time snapshot of a cache's operation counters.
type Stats = models.Stats

// Option 定義初始化快取的選項
type Option func(*config.Config) error

// WithName 設置快取名稱，用於日誌、追蹤與指標
func WithName(name string) Option {
	return Option(config.WithName(name))
}

// WithLogger 設置自定義的日誌記錄器
func WithLogger(logger *zap.Logger) Option {
	return Option(config.WithLogger(logger))
}

// WithSweepInterval sets how long a cache must be idle before expired entries
// are swept automatically.
func WithSweepInterval(d time.Duration) Option {
	return Option(config.WithSweepInterval(d))
}

// WithCallTimeout bounds synchronous operations whose context has no deadline.
func WithCallTimeout(d time.Duration) Option {
	return Option(config.WithCallTimeout(d))
}

// WithTracerProvider 設置 OpenTelemetry 追蹤提供者
func WithTracerProvider(tp trace.TracerProvider) Option {
	return Option(config.WithTracerProvider(tp))
}

// WithMeterProvider 設置 OpenTelemetry 指標提供者
func WithMeterProvider(mp metric.MeterProvider) Option {
	return Option(config.WithMeterProvider(mp))
}

// Cache is a handle to a running cache actor. It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	actor  *actor.Actor[K, V]
	tracer trace.Tracer
	attrs  trace.SpanStartEventOption
}

var _ Backend[string, any] = (*Cache[string, any])(nil)

// New 初始化快取並啟動其擁有者 goroutine
func New[K comparable, V any](opts ...Option) (*Cache[K, V], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return newCache[K, V](cfg)
}

func newConfig(opts ...Option) (*config.Config, error) {
	options := make([]config.Option, 0, len(opts))
	for _, opt := range opts {
		if opt != nil {
			options = append(options, config.Option(opt))
		}
	}

	cfg, err := config.NewConfig(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply option: %w", err)
	}
	return cfg, nil
}

func newCache[K comparable, V any](cfg *config.Config) (*Cache[K, V], error) {
	a, err := actor.Start[K, V](cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start cache actor: %w", err)
	}

	return &Cache[K, V]{
		actor:  a,
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
		attrs:  trace.WithAttributes(attribute.String("cache", cfg.Name)),
	}, nil
}

// Name returns the name the cache was created with.
func (c *Cache[K, V]) Name() string {
	return c.actor.Name()
}

// Put 設置快取項目。ttl 省略、為零或為負時項目永不過期
func (c *Cache[K, V]) Put(ctx context.Context, key K, value V, ttl ...time.Duration) error {
	d := resolveTTL(ttl...)
	_, span := c.tracer.Start(ctx, "Cache.Put", c.attrs,
		trace.WithAttributes(attribute.Int64("ttl_ms", d.Milliseconds())))
	defer span.End()

	err := c.actor.Put(key, value, d)
	endSpan(span, err)
	return err
}

// Get 獲取快取項目。不存在或已過期時 found 為 false
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	ctx, span := c.tracer.Start(ctx, "Cache.Get", c.attrs)
	defer span.End()

	value, found, err := c.actor.Get(ctx, key)
	span.SetAttributes(attribute.Bool("hit", found))
	endSpan(span, err)
	return value, found, err
}

// Delete 刪除快取項目
func (c *Cache[K, V]) Delete(ctx context.Context, key K) error {
	_, span := c.tracer.Start(ctx, "Cache.Delete", c.attrs)
	defer span.End()

	err := c.actor.Delete(key)
	endSpan(span, err)
	return err
}

// Stats returns the operation counters.
func (c *Cache[K, V]) Stats(ctx context.Context) (Stats, error) {
	ctx, span := c.tracer.Start(ctx, "Cache.Stats", c.attrs)
	defer span.End()

	s, err := c.actor.Stats(ctx)
	endSpan(span, err)
	return s, err
}

// ResetStats zeroes the operation counters. Entries are not touched.
func (c *Cache[K, V]) ResetStats(ctx context.Context) error {
	_, span := c.tracer.Start(ctx, "Cache.ResetStats", c.attrs)
	defer span.End()

	err := c.actor.ResetStats()
	endSpan(span, err)
	return err
}

// CleanupExpired removes every expired entry now and reports how many were removed.
func (c *Cache[K, V]) CleanupExpired(ctx context.Context) (int, error) {
	ctx, span := c.tracer.Start(ctx, "Cache.CleanupExpired", c.attrs)
	defer span.End()

	n, err := c.actor.CleanupExpired(ctx)
	span.SetAttributes(attribute.Int("removed", n))
	endSpan(span, err)
	return n, err
}

// Len returns the number of stored entries, including expired ones that have
// not been read or swept yet.
func (c *Cache[K, V]) Len(ctx context.Context) (int, error) {
	return c.actor.Size(ctx)
}

// Pending returns the number of queued operations the cache has not processed yet.
func (c *Cache[K, V]) Pending() int {
	return c.actor.Pending()
}

// Timeouts returns how many synchronous operations gave up waiting for an answer.
func (c *Cache[K, V]) Timeouts() int64 {
	return c.actor.Timeouts()
}

// Close 關閉快取，釋放資源。重複調用是安全的
func (c *Cache[K, V]) Close() error {
	c.actor.Stop()
	return nil
}

// Done is closed once the cache's goroutine has exited.
func (c *Cache[K, V]) Done() <-chan struct{} {
	return c.actor.Done()
}

func (c *Cache[K, V]) spanTracer() trace.Tracer {
	return c.tracer
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
