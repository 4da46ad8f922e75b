// Package store holds the entry table of a cache actor.
//
// Store performs no locking. Correctness depends on every call being made from
// the single goroutine that owns it.
package store

import (
	"time"

	"goflare.io/hearth/internal/models"
)

// Store maps keys to entries.
type Store[K comparable, V any] struct {
	entries map[K]models.Entry[V]
}

// New creates an empty Store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		entries: make(map[K]models.Entry[V]),
	}
}

// Get looks up a key without evaluating expiry.
func (s *Store[K, V]) Get(key K) (models.Entry[V], bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Set inserts or replaces the entry for key.
func (s *Store[K, V]) Set(key K, entry models.Entry[V]) {
	s.entries[key] = entry
}

// Delete removes key. Missing keys are ignored.
func (s *Store[K, V]) Delete(key K) {
	delete(s.entries, key)
}

// Len returns the number of stored entries, expired or not.
func (s *Store[K, V]) Len() int {
	return len(s.entries)
}

// DeleteFunc removes every entry for which match returns true and reports how
// many were removed.
func (s *Store[K, V]) DeleteFunc(match func(key K, entry models.Entry[V]) bool) int {
	removed := 0
	for key, e := range s.entries {
		if match(key, e) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Sweep removes the entries whose finite expiry is strictly before now.
func (s *Store[K, V]) Sweep(now time.Time) int {
	return s.DeleteFunc(func(_ K, e models.Entry[V]) bool {
		return e.ExpiredAt(now)
	})
}
