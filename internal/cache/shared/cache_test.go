package shared

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestCache[V any](t *testing.T, opts ...Option) *Cache[V] {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	c, err := New[V](opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_PutGetDelete(t *testing.T) {
	c := newTestCache[string](t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", "v"))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_TTL(t *testing.T) {
	c := newTestCache[int](t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "short", 1, 30*time.Millisecond))
	require.NoError(t, c.Put(ctx, "forever", 2, 0))

	time.Sleep(60 * time.Millisecond)

	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestCache_DefaultTTL(t *testing.T) {
	c := newTestCache[int](t, WithDefaultTTL(30*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", 1))
	time.Sleep(60 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := newTestCache[int](t)
	ctx := context.Background()

	for i, key := range []string{"a", "b", "c"} {
		require.NoError(t, c.Put(ctx, key, i))
	}
	require.NoError(t, c.Clear(ctx))

	for _, key := range []string{"a", "b", "c"} {
		_, ok, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestCache_CanceledContext(t *testing.T) {
	c := newTestCache[int](t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Put(ctx, "k", 1), context.Canceled)
	_, _, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, c.Delete(ctx, "k"), context.Canceled)
	assert.ErrorIs(t, c.Clear(ctx), context.Canceled)
}

func TestCache_Stats(t *testing.T) {
	c := newTestCache[int](t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", 1))
	_, _, _ = c.Get(ctx, "k")
	_, _, _ = c.Get(ctx, "missing")

	s := c.Stats()
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.Equal(t, uint64(1), s.KeysAdded)
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c, err := New[int]()
	require.NoError(t, err)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestOptions(t *testing.T) {
	o := defaultOptions()
	WithExpectedKeys(50)(o)
	WithExpectedKeys(-1)(o)
	WithBufferItems(0)(o)
	WithLogger(nil)(o)

	assert.Equal(t, int64(500), o.NumCounters)
	assert.Equal(t, int64(64), o.BufferItems)
	assert.NotNil(t, o.Logger)
}
