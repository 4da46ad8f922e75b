package actor

import (
	"time"

	"go.uber.org/zap"

	"goflare.io/hearth/internal/models"
)

type opKind uint8

const (
	opPut opKind = iota
	opGet
	opDelete
	opStats
	opResetStats
	opCleanup
	opSize
)

func (k opKind) String() string {
	switch k {
	case opPut:
		return "put"
	case opGet:
		return "get"
	case opDelete:
		return "delete"
	case opStats:
		return "stats"
	case opResetStats:
		return "reset_stats"
	case opCleanup:
		return "cleanup_expired"
	case opSize:
		return "size"
	default:
		return "unknown"
	}
}

type message[K comparable, V any] struct {
	kind  opKind
	key   K
	value V
	ttl   time.Duration
	reply chan reply[V]
}

type reply[V any] struct {
	value V
	found bool
	count int
	stats models.Stats
	err   error
}

// run is the only goroutine that touches a.store and a.stats.
func (a *Actor[K, V]) run() {
	defer close(a.done)

	// Armed after every processed batch; fires only after a full idle interval.
	idle := time.NewTimer(a.sweepInterval)
	defer idle.Stop()

	var batch []message[K, V]
	for {
		select {
		case <-a.ctx.Done():
			a.abandon(a.mailbox.close())
			a.logger.Info("Cache actor stopped", zap.Int("entries", a.store.Len()))
			return
		case <-a.mailbox.notify:
			batch = a.mailbox.drain(batch[:0])
			for i := range batch {
				a.handle(&batch[i])
				batch[i] = message[K, V]{}
			}
			idle.Reset(a.sweepInterval)
		case <-idle.C:
			a.sweep("idle")
			idle.Reset(a.sweepInterval)
		}
	}
}

func (a *Actor[K, V]) handle(msg *message[K, V]) {
	switch msg.kind {
	case opPut:
		a.store.Set(msg.key, models.NewEntry(msg.value, msg.ttl, a.now()))
		a.stats.Put(a.ctx)
	case opDelete:
		a.store.Delete(msg.key)
		a.stats.Delete(a.ctx)
	case opResetStats:
		a.stats.Reset()
	case opGet:
		value, found := a.get(msg.key)
		msg.reply <- reply[V]{value: value, found: found}
	case opStats:
		msg.reply <- reply[V]{stats: a.stats.Snapshot()}
	case opCleanup:
		msg.reply <- reply[V]{count: a.sweep("manual")}
	case opSize:
		msg.reply <- reply[V]{count: a.store.Len()}
	default:
		a.logger.Error("Unknown cache actor message", zap.Uint8("kind", uint8(msg.kind)))
	}
}

// get is the only place expiry is evaluated on the read path. A stale entry is
// removed and counted as a miss.
func (a *Actor[K, V]) get(key K) (V, bool) {
	var zero V

	entry, ok := a.store.Get(key)
	if !ok {
		a.stats.Miss(a.ctx)
		return zero, false
	}
	if entry.ExpiredAt(a.now()) {
		a.store.Delete(key)
		a.stats.Miss(a.ctx)
		return zero, false
	}

	a.stats.Hit(a.ctx)
	return entry.Value, true
}

func (a *Actor[K, V]) sweep(trigger string) int {
	removed := a.store.Sweep(a.now())
	a.stats.Expired(a.ctx, removed)
	if removed > 0 {
		a.logger.Debug("Swept expired entries",
			zap.String("trigger", trigger),
			zap.Int("removed", removed),
			zap.Int("remaining", a.store.Len()))
	}
	return removed
}

// abandon answers callers whose messages will never be processed.
func (a *Actor[K, V]) abandon(rest []message[K, V]) {
	for i := range rest {
		if rest[i].reply != nil {
			rest[i].reply <- reply[V]{err: ErrStopped}
		}
	}
	if len(rest) > 0 {
		a.logger.Warn("Dropped queued messages on stop", zap.Int("dropped", len(rest)))
	}
}
