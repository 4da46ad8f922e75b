package hearth

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerFallback_PassesThroughWhileClosed(t *testing.T) {
	errSource := errors.New("source unavailable")
	var calls atomic.Int32

	fb, err := BreakerFallback[string, int](func(_ context.Context, key string) (Result[int], error) {
		calls.Add(1)
		if key == "bad" {
			return Result[int]{}, errSource
		}
		return Commit(len(key)), nil
	}, gobreaker.Settings{Name: "test"})
	require.NoError(t, err)

	res, err := fb(context.Background(), "four")
	require.NoError(t, err)
	assert.Equal(t, Commit(4), res)

	_, err = fb(context.Background(), "bad")
	assert.Same(t, errSource, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBreakerFallback_OpensAfterFailures(t *testing.T) {
	errSource := errors.New("source unavailable")
	var calls atomic.Int32

	fb, err := BreakerFallback[string, int](func(context.Context, string) (Result[int], error) {
		calls.Add(1)
		return Result[int]{}, errSource
	}, gobreaker.Settings{
		Name:    "test",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	})
	require.NoError(t, err)

	c := newTestCache[string, int](t)
	ctx := context.Background()

	for range 2 {
		_, err = Fetch(ctx, c, "k", fb)
		assert.Same(t, errSource, err)
	}

	_, err = Fetch(ctx, c, "k", fb)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBreakerFallback_Nil(t *testing.T) {
	_, err := BreakerFallback[string, int](nil, gobreaker.Settings{})
	assert.ErrorIs(t, err, ErrNilFallback)
}
