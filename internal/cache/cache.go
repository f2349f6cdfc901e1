// Package cache provides the in-memory result stores shared by the scraping
// engines. Entries are only ever superseded in place; nothing is evicted for
// the lifetime of the process.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Store maps string keys to a payload plus the time it was fetched.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
}

func New[T any]() *Store[T] {
	return &Store[T]{entries: map[string]entry[T]{}}
}

// Get returns the stored payload and its fetch time regardless of age.
func (s *Store[T]) Get(key string) (T, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e.value, e.fetchedAt, ok
}

// GetFresh returns the stored payload only if it was fetched within the given
// window. A window of zero or less means every entry is stale.
func (s *Store[T]) GetFresh(key string, window time.Duration) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || window <= 0 || time.Since(e.fetchedAt) >= window {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Put stores the payload under key with the current time, replacing any
// previous entry.
func (s *Store[T]) Put(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[T]{value: value, fetchedAt: time.Now()}
}

// Key derives a stable cache key from an arbitrary string such as a full
// request URL. Distinct inputs never collide.
func Key(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
