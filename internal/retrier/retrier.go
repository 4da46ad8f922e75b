// Package retrier runs a function again, with backoff, while it keeps failing
// with temporary errors.
package retrier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

const (
	minMaxAttempts = 1
	minBaseDelay   = time.Millisecond
	minFactor      = 1.0
	maxJitter      = 1.0
)

// ExponentialBackoff multiplies the delay by Factor after each attempt.
// LinearBackoff grows the delay by BaseDelay after each attempt.
// FibonacciBackoff grows the delay along the Fibonacci sequence.
const (
	ExponentialBackoff BackoffStrategy = iota
	LinearBackoff
	FibonacciBackoff
)

var (
	// ErrInvalidMaxAttempts is returned when the max attempts parameter is invalid.
	ErrInvalidMaxAttempts = errors.New("max attempts must be at least 1")
	// ErrInvalidBaseDelay is returned when the base delay parameter is invalid.
	ErrInvalidBaseDelay = errors.New("base delay must be at least 1ms")
	// ErrInvalidFactor is returned when the factor parameter is invalid.
	ErrInvalidFactor = errors.New("factor must be at least 1.0")
	// ErrInvalidJitter is returned when the jitter parameter is invalid.
	ErrInvalidJitter = errors.New("jitter must be between 0 and 1")
	// ErrExhausted wraps the last error once every attempt has failed.
	ErrExhausted = errors.New("max retry attempts reached")
)

// BackoffStrategy selects how the delay between attempts grows.
type BackoffStrategy int

// Policy describes how often and how patiently to retry.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Factor      float64
	Jitter      float64
	Strategy    BackoffStrategy
	// Retryable reports whether err is worth another attempt. IsTemporary is
	// used when nil.
	Retryable func(error) bool
}

// DefaultPolicy retries three times with exponential backoff from 10ms.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    time.Second,
		Factor:      2,
		Jitter:      0.1,
		Strategy:    ExponentialBackoff,
	}
}

// Retrier executes a function under a validated Policy.
type Retrier struct {
	policy Policy
}

// New validates p and returns a Retrier for it.
func New(p Policy) (*Retrier, error) {
	if p.MaxAttempts < minMaxAttempts {
		return nil, ErrInvalidMaxAttempts
	}
	if p.BaseDelay < minBaseDelay {
		return nil, ErrInvalidBaseDelay
	}
	if p.Factor < minFactor {
		return nil, ErrInvalidFactor
	}
	if p.Jitter < 0 || p.Jitter > maxJitter {
		return nil, ErrInvalidJitter
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.Retryable == nil {
		p.Retryable = IsTemporary
	}
	return &Retrier{policy: p}, nil
}

// Run calls fn until it succeeds, fails with a non-retryable error, runs out
// of attempts or ctx ends. A non-retryable error is returned unchanged.
func (r *Retrier) Run(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !r.policy.Retryable(err) {
			return err
		}
		if attempt == r.policy.MaxAttempts-1 {
			break
		}

		timer := time.NewTimer(r.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w: %w", ErrExhausted, err)
}

// Delay returns the wait after the given zero-based attempt, jitter included.
func (r *Retrier) Delay(attempt int) time.Duration {
	p := r.policy

	var delay float64
	switch p.Strategy {
	case LinearBackoff:
		delay = float64(p.BaseDelay) * float64(attempt+1)
	case FibonacciBackoff:
		delay = float64(p.BaseDelay) * float64(fibonacci(attempt+1))
	default:
		delay = float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt))
	}

	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	delay += rand.Float64() * p.Jitter * delay
	if delay > float64(time.Hour) {
		delay = float64(time.Hour)
	}
	return time.Duration(delay)
}

// fibonacci returns F(n) with F(1) = F(2) = 1, saturating instead of overflowing.
func fibonacci(n int) int64 {
	var a, b int64 = 0, 1
	for range n {
		if b > math.MaxInt64-a {
			return math.MaxInt64
		}
		a, b = b, a+b
	}
	return a
}
