package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fastPolicy(attempts int) Policy {
	p := DefaultPolicy()
	p.MaxAttempts = attempts
	p.BaseDelay = time.Millisecond
	p.MaxDelay = 2 * time.Millisecond
	p.Jitter = 0
	return p
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Policy)
		want   error
	}{
		{"zero attempts", func(p *Policy) { p.MaxAttempts = 0 }, ErrInvalidMaxAttempts},
		{"tiny base delay", func(p *Policy) { p.BaseDelay = time.Microsecond }, ErrInvalidBaseDelay},
		{"factor below one", func(p *Policy) { p.Factor = 0.5 }, ErrInvalidFactor},
		{"negative jitter", func(p *Policy) { p.Jitter = -0.1 }, ErrInvalidJitter},
		{"jitter above one", func(p *Policy) { p.Jitter = 1.5 }, ErrInvalidJitter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.modify(&p)
			_, err := New(p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRun_SucceedsAfterTemporaryFailures(t *testing.T) {
	r, err := New(fastPolicy(3))
	require.NoError(t, err)

	calls := 0
	err = r.Run(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return MarkTemporary(errBoom)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRun_PermanentErrorIsNotRetried(t *testing.T) {
	r, err := New(fastPolicy(5))
	require.NoError(t, err)

	calls := 0
	err = r.Run(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	})
	assert.Same(t, errBoom, err)
	assert.Equal(t, 1, calls)
}

func TestRun_Exhausted(t *testing.T) {
	r, err := New(fastPolicy(3))
	require.NoError(t, err)

	calls := 0
	err = r.Run(context.Background(), func(context.Context) error {
		calls++
		return MarkTemporary(errBoom)
	})
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, calls)
}

func TestRun_ContextCanceled(t *testing.T) {
	p := fastPolicy(10)
	p.BaseDelay = time.Hour
	p.MaxDelay = time.Hour
	r, err := New(p)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	err = r.Run(ctx, func(context.Context) error {
		cancel()
		return MarkTemporary(errBoom)
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelay_Strategies(t *testing.T) {
	base := Policy{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond, MaxDelay: time.Second, Factor: 2}

	tests := []struct {
		strategy BackoffStrategy
		want     []time.Duration
	}{
		{ExponentialBackoff, []time.Duration{10, 20, 40, 80}},
		{LinearBackoff, []time.Duration{10, 20, 30, 40}},
		{FibonacciBackoff, []time.Duration{10, 10, 20, 30}},
	}

	for _, tt := range tests {
		p := base
		p.Strategy = tt.strategy
		r, err := New(p)
		require.NoError(t, err)
		for attempt, want := range tt.want {
			assert.Equal(t, want*time.Millisecond, r.Delay(attempt), "strategy %d attempt %d", tt.strategy, attempt)
		}
	}
}

func TestDelay_CappedAtMaxDelay(t *testing.T) {
	r, err := New(Policy{MaxAttempts: 1, BaseDelay: 100 * time.Millisecond, MaxDelay: 150 * time.Millisecond, Factor: 10})
	require.NoError(t, err)
	assert.Equal(t, 150*time.Millisecond, r.Delay(5))
}

func TestDelay_JitterBounds(t *testing.T) {
	r, err := New(Policy{MaxAttempts: 1, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Factor: 1, Jitter: 0.5})
	require.NoError(t, err)
	for range 100 {
		d := r.Delay(0)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestMarkTemporary(t *testing.T) {
	assert.NoError(t, MarkTemporary(nil))
	assert.False(t, IsTemporary(errBoom))

	err := MarkTemporary(errBoom)
	assert.True(t, IsTemporary(err))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, "boom", err.Error())
}
