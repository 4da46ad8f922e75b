package hearth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

func newTestCache[K comparable, V any](t *testing.T, opts ...Option) *Cache[K, V] {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithName(t.Name())}, opts...)
	c, err := New[K, V](opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew_InvalidOption(t *testing.T) {
	_, err := New[string, int](WithSweepInterval(0))
	assert.Error(t, err)

	_, err = New[string, int](WithName(""))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestCache_PutGetDelete(t *testing.T) {
	c := newTestCache[string, string](t)
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
	c := newTestCache[string, int](t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "short", 1, 50*time.Millisecond))
	require.NoError(t, c.Put(ctx, "forever", 2))
	require.NoError(t, c.Put(ctx, "negative", 3, -time.Second))

	time.Sleep(80 * time.Millisecond)

	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	for key, want := range map[string]int{"forever": 2, "negative": 3} {
		v, ok, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
		assert.Equal(t, want, v)
	}
}

func TestCache_Scenario(t *testing.T) {
	c := newTestCache[string, int](t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "a", 1))
	require.NoError(t, c.Put(ctx, "b", 2, 50*time.Millisecond))
	time.Sleep(60 * time.Millisecond)

	v, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	removed, err := c.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	s, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Puts: 2, TotalOperations: 4}, s)
}

func TestCache_StatsAndReset(t *testing.T) {
	c := newTestCache[string, int](t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "a", 1))
	_, _, _ = c.Get(ctx, "a")
	_, _, _ = c.Get(ctx, "b")
	require.NoError(t, c.Delete(ctx, "a"))

	s, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Puts: 1, Deletes: 1, TotalOperations: 4}, s)
	assert.InDelta(t, 0.5, s.HitRatio(), 1e-9)

	require.NoError(t, c.ResetStats(ctx))
	s, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, s)
}

func TestCache_AutomaticSweep(t *testing.T) {
	c := newTestCache[string, int](t, WithSweepInterval(20*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "gone", 1, 5*time.Millisecond))
	require.NoError(t, c.Put(ctx, "kept", 2))

	require.Eventually(t, func() bool {
		n, err := c.Len(ctx)
		return err == nil && n == 1
	}, 2*time.Second, 60*time.Millisecond)
}

func TestCache_Close(t *testing.T) {
	c, err := New[string, int](WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	<-c.Done()

	ctx := context.Background()
	assert.ErrorIs(t, c.Put(ctx, "k", 1), ErrStopped)
	assert.ErrorIs(t, c.Delete(ctx, "k"), ErrStopped)
	assert.ErrorIs(t, c.ResetStats(ctx), ErrStopped)
	_, _, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrStopped)
	_, err = c.Stats(ctx)
	assert.ErrorIs(t, err, ErrStopped)
	_, err = c.CleanupExpired(ctx)
	assert.ErrorIs(t, err, ErrStopped)
}

func TestCache_IndependentInstances(t *testing.T) {
	a := newTestCache[string, int](t, WithName("a"))
	b := newTestCache[string, int](t, WithName("b"))
	ctx := context.Background()

	require.NoError(t, a.Put(ctx, "k", 1))
	_, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	sa, err := a.Stats(ctx)
	require.NoError(t, err)
	sb, err := b.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sa.Puts)
	assert.Equal(t, uint64(0), sb.Puts)
}

func TestCache_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	c := newTestCache[string, int](t, WithName("traced"), WithTracerProvider(tp))
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", 1, time.Minute))
	_, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, c.Close())
	_, _, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrStopped)

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, "Cache.Put", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("cache", "traced"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("ttl_ms", 60000))

	assert.Equal(t, "Cache.Get", spans[1].Name())
	assert.Contains(t, spans[1].Attributes(), attribute.Bool("hit", true))
	assert.Equal(t, codes.Ok, spans[1].Status().Code)

	assert.Equal(t, codes.Error, spans[2].Status().Code)
	assert.Len(t, spans[2].Events(), 1, "error recorded as an event")
}

func TestCache_PendingAndTimeouts(t *testing.T) {
	c := newTestCache[string, int](t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	_, _, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, int64(1), c.Timeouts())

	_, err = c.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, c.Pending())
}
