// Package actor implements the goroutine that exclusively owns a cache's entry
// table and statistics.
//
// Every operation is delivered through one FIFO mailbox and executed by the
// owning goroutine strictly one at a time. Put, Delete and ResetStats are casts:
// the caller enqueues and returns. Get, Stats, Size and CleanupExpired are calls:
// the caller blocks for the reply, bounded by its context deadline or the
// configured call timeout.
package actor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"goflare.io/hearth/internal/cache/store"
	"goflare.io/hearth/internal/config"
	"goflare.io/hearth/internal/models"
	"goflare.io/hearth/internal/stats"
)

const instrumentationName = "goflare.io/hearth"

var (
	// ErrStopped is returned for operations sent to an actor that has stopped.
	ErrStopped = errors.New("cache actor stopped")
	// ErrTimeout is returned when a call gets no reply within its deadline.
	ErrTimeout = errors.New("cache actor did not reply in time")
)

// Actor owns one entry store and one stats collector.
type Actor[K comparable, V any] struct {
	name          string
	sweepInterval time.Duration
	callTimeout   time.Duration
	logger        *zap.Logger
	now           func() time.Time

	// owned by the run goroutine
	store *store.Store[K, V]
	stats *stats.Collector

	mailbox  *mailbox[message[K, V]]
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopped  *atomic.Bool
	timeouts *atomic.Int64
}

// Start creates an actor from cfg and launches its goroutine.
func Start[K comparable, V any](cfg *config.Config) (*Actor[K, V], error) {
	return start[K, V](cfg, time.Now)
}

func start[K comparable, V any](cfg *config.Config, now func() time.Time) (*Actor[K, V], error) {
	a, err := newActor[K, V](cfg, now)
	if err != nil {
		return nil, err
	}

	go a.run()

	a.logger.Info("Cache actor started", zap.Duration("sweep_interval", a.sweepInterval))
	return a, nil
}

func newActor[K comparable, V any](cfg *config.Config, now func() time.Time) (*Actor[K, V], error) {
	collector, err := stats.NewCollector(cfg.MeterProvider.Meter(instrumentationName), cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats collector: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &Actor[K, V]{
		name:          cfg.Name,
		sweepInterval: cfg.SweepInterval,
		callTimeout:   cfg.CallTimeout,
		logger:        cfg.Logger.With(zap.String("cache", cfg.Name)),
		now:           now,
		store:         store.New[K, V](),
		stats:         collector,
		mailbox:       newMailbox[message[K, V]](),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		stopped:       atomic.NewBool(false),
		timeouts:      atomic.NewInt64(0),
	}
	return a, nil
}

// Name returns the name the actor was started with.
func (a *Actor[K, V]) Name() string {
	return a.name
}

// Put stores value under key. A non-positive ttl means the entry never expires.
func (a *Actor[K, V]) Put(key K, value V, ttl time.Duration) error {
	return a.cast(message[K, V]{kind: opPut, key: key, value: value, ttl: ttl})
}

// Delete removes key. Deleting a missing key is not an error.
func (a *Actor[K, V]) Delete(key K) error {
	return a.cast(message[K, V]{kind: opDelete, key: key})
}

// ResetStats zeroes the operation counters.
func (a *Actor[K, V]) ResetStats() error {
	return a.cast(message[K, V]{kind: opResetStats})
}

// Get returns the live value stored under key.
func (a *Actor[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	r, err := a.call(ctx, message[K, V]{kind: opGet, key: key})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return r.value, r.found, nil
}

// Stats returns a snapshot of the operation counters.
func (a *Actor[K, V]) Stats(ctx context.Context) (models.Stats, error) {
	r, err := a.call(ctx, message[K, V]{kind: opStats})
	if err != nil {
		return models.Stats{}, err
	}
	return r.stats, nil
}

// CleanupExpired sweeps expired entries now and returns how many were removed.
func (a *Actor[K, V]) CleanupExpired(ctx context.Context) (int, error) {
	r, err := a.call(ctx, message[K, V]{kind: opCleanup})
	if err != nil {
		return 0, err
	}
	return r.count, nil
}

// Size returns the number of stored entries, including expired entries that
// have not been swept or read yet.
func (a *Actor[K, V]) Size(ctx context.Context) (int, error) {
	r, err := a.call(ctx, message[K, V]{kind: opSize})
	if err != nil {
		return 0, err
	}
	return r.count, nil
}

// Timeouts returns how many calls gave up waiting for a reply.
func (a *Actor[K, V]) Timeouts() int64 {
	return a.timeouts.Load()
}

// Pending returns the number of queued, unprocessed messages.
func (a *Actor[K, V]) Pending() int {
	return a.mailbox.len()
}

// Stop terminates the actor and waits for its goroutine to exit. Messages still
// queued are dropped; callers waiting on them receive ErrStopped.
// Stop is safe to call multiple times.
func (a *Actor[K, V]) Stop() {
	if a.stopped.CompareAndSwap(false, true) {
		a.cancel()
	}
	<-a.done
}

// Done is closed once the actor goroutine has exited.
func (a *Actor[K, V]) Done() <-chan struct{} {
	return a.done
}

func (a *Actor[K, V]) cast(msg message[K, V]) error {
	if !a.mailbox.push(msg) {
		a.logger.Debug("Dropping message for stopped cache actor", zap.Stringer("op", msg.kind))
		return ErrStopped
	}
	return nil
}

func (a *Actor[K, V]) call(ctx context.Context, msg message[K, V]) (reply[V], error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.callTimeout)
		defer cancel()
	}

	// a caller that has already given up never enqueues
	if err := ctx.Err(); err != nil {
		return reply[V]{}, a.giveUp(msg.kind, err)
	}

	msg.reply = make(chan reply[V], 1)
	if !a.mailbox.push(msg) {
		return reply[V]{}, ErrStopped
	}

	select {
	case r := <-msg.reply:
		return r, r.err
	case <-a.done:
		select {
		case r := <-msg.reply:
			return r, r.err
		default:
			return reply[V]{}, ErrStopped
		}
	case <-ctx.Done():
		return reply[V]{}, a.giveUp(msg.kind, ctx.Err())
	}
}

// giveUp turns a finished context into the error a call returns. Only
// deadlines count as timeouts.
func (a *Actor[K, V]) giveUp(kind opKind, err error) error {
	if !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	a.timeouts.Inc()
	a.logger.Warn("Cache actor call timed out",
		zap.Stringer("op", kind),
		zap.Int("pending", a.mailbox.len()))
	return fmt.Errorf("%w: %s: %w", ErrTimeout, kind, err)
}
