// Package shared implements a cache kind backed by ristretto that callers use
// concurrently without going through a mailbox.
//
// Entries expire by absolute TTL only. The cost budget is large enough that
// entries are never evicted for space, but ristretto may still drop a write
// under heavy contention, which Put reports as ErrRejected.
package shared

import (
	"context"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Options 定義 ristretto 快取的容量參數
type Options struct {
	// NumCounters sizes ristretto's frequency sketch, about ten times the
	// number of expected keys.
	NumCounters int64
	// BufferItems is the size of ristretto's Get buffers.
	BufferItems int64
	// DefaultTTL applies when Put is called without a ttl. Zero never expires.
	DefaultTTL time.Duration
	Logger     *zap.Logger
}

// Option 配置函數
type Option func(*Options)

// WithExpectedKeys sizes the frequency sketch for about n keys. Non-positive n is ignored.
func WithExpectedKeys(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.NumCounters = 10 * n
		}
	}
}

// WithBufferItems sets ristretto's Get buffer size. Non-positive n is ignored.
func WithBufferItems(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.BufferItems = n
		}
	}
}

// WithDefaultTTL sets the ttl used when Put is called without one.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.DefaultTTL = ttl
	}
}

// WithLogger 設置日誌記錄器
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

func defaultOptions() *Options {
	return &Options{
		NumCounters: 1e6,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	}
}

// Cache is a string-keyed cache safe for concurrent use.
type Cache[V any] struct {
	store      *store[V]
	defaultTTL time.Duration
	logger     *zap.Logger
	closed     *atomic.Bool
}

// New creates a new Cache instance.
func New[V any](opts ...Option) (*Cache[V], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	s, err := newStore[V](o)
	if err != nil {
		return nil, err
	}

	return &Cache[V]{
		store:      s,
		defaultTTL: o.DefaultTTL,
		logger:     o.Logger,
		closed:     atomic.NewBool(false),
	}, nil
}

// Put writes value under key. The first ttl wins over the default; a
// non-positive ttl never expires.
func (c *Cache[V]) Put(ctx context.Context, key string, value V, ttl ...time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	expiration := c.defaultTTL
	if len(ttl) > 0 {
		expiration = ttl[0]
	}

	if err := c.store.set(key, value, expiration); err != nil {
		c.logger.Warn("Ristretto set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Get retrieves a live entry.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	if err := ctx.Err(); err != nil {
		var zero V
		return zero, false, err
	}

	value, found := c.store.get(key)
	return value, found, nil
}

// Delete removes a cache entry.
func (c *Cache[V]) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.store.del(key)
	return nil
}

// Clear 清空所有快取
func (c *Cache[V]) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.store.clear()
	return nil
}

// Stats 返回 ristretto 的命中統計
func (c *Cache[V]) Stats() Stats {
	m := c.store.metrics()
	return Stats{
		Hits:         m.Hits(),
		Misses:       m.Misses(),
		KeysAdded:    m.KeysAdded(),
		KeysEvicted:  m.KeysEvicted(),
		SetsDropped:  m.SetsDropped(),
		SetsRejected: m.SetsRejected(),
	}
}

// Close releases ristretto's goroutines. Repeated calls are no-ops.
func (c *Cache[V]) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.store.close()
	}
	return nil
}

// Stats counts ristretto-level events since creation.
type Stats struct {
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
	KeysAdded    uint64 `json:"keys_added"`
	KeysEvicted  uint64 `json:"keys_evicted"`
	SetsDropped  uint64 `json:"sets_dropped"`
	SetsRejected uint64 `json:"sets_rejected"`
}
