package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// ErrRejected is returned when ristretto drops a write.
var ErrRejected = errors.New("entry rejected by ristretto")

// maxCost keeps the budget out of reach so nothing is evicted for space.
const maxCost = 1 << 50

// store wraps a ristretto cache so that every write is visible to the next read.
type store[V any] struct {
	cache *ristretto.Cache[string, V]
}

func newStore[V any](opts *Options) (*store[V], error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters:        opts.NumCounters,
		MaxCost:            maxCost,
		BufferItems:        opts.BufferItems,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Ristretto cache: %w", err)
	}
	return &store[V]{cache: c}, nil
}

// set writes value with a cost of 1. A non-positive ttl never expires.
func (s *store[V]) set(key string, value V, ttl time.Duration) error {
	var ok bool
	if ttl > 0 {
		ok = s.cache.SetWithTTL(key, value, 1, ttl)
	} else {
		ok = s.cache.Set(key, value, 1)
	}
	if !ok {
		return ErrRejected
	}
	s.cache.Wait()
	return nil
}

func (s *store[V]) get(key string) (V, bool) {
	return s.cache.Get(key)
}

func (s *store[V]) del(key string) {
	s.cache.Del(key)
}

func (s *store[V]) clear() {
	s.cache.Clear()
}

func (s *store[V]) close() {
	s.cache.Close()
}

func (s *store[V]) metrics() *ristretto.Metrics {
	return s.cache.Metrics
}
