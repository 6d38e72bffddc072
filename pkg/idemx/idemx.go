// Package idemx provides a process-local idempotency store: a set of keys
// with expiry used to suppress duplicate processing of the same logical
// operation (e.g. a double-submitted invitation acceptance).
//
// The store is a storage primitive only. Callers must keep the Has/Add pair
// free of intervening suspension points, or the idempotency window stays open.
package idemx

import (
	"sync"
	"time"
)

// DefaultTTL is used when a store is constructed with a non-positive TTL.
const DefaultTTL = 24 * time.Hour

// Store records idempotency keys with a TTL. Safe for concurrent use.
// State is per-process; multiple instances do not coordinate.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time // key -> expiry

	now func() time.Time // injectable clock for tests
}

// New creates a store with the given default TTL.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Add records the key with the store's default TTL.
func (s *Store) Add(key string) {
	s.AddTTL(key, s.ttl)
}

// AddTTL records the key with an explicit TTL.
func (s *Store) AddTTL(key string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.ttl
	}

	s.mu.Lock()
	s.entries[key] = s.now().Add(ttl)
	s.mu.Unlock()
}

// Has reports whether the key is present and unexpired. An expired entry
// found during the check is evicted (lazy expiry).
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[key]
	if !ok {
		return false
	}
	if s.now().After(expiry) {
		delete(s.entries, key)
		return false
	}
	return true
}

// Sweep evicts every expired entry and returns how many were removed. Keys
// that are never re-queried are only reclaimed here, so run it periodically
// (the housekeeping service does).
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, expiry := range s.entries {
		if now.After(expiry) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries (expired-but-unswept included).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
