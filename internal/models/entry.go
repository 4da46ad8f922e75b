package models

import (
	"time"
)

// Entry represents a cache entry.
// A zero ExpiresAt means the entry never expires.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// NewEntry creates a new Entry. A non-positive ttl yields an entry that never expires.
func NewEntry[V any](value V, ttl time.Duration, now time.Time) Entry[V] {
	e := Entry[V]{Value: value}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	return e
}

// Infinite reports whether the entry never expires.
func (e Entry[V]) Infinite() bool {
	return e.ExpiresAt.IsZero()
}

// ExpiredAt checks if the entry had expired at the given instant.
// Expiry is strict: an entry whose deadline equals now is still live.
func (e Entry[V]) ExpiredAt(now time.Time) bool {
	return !e.Infinite() && e.ExpiresAt.Before(now)
}
