package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and local development.
// The clock is injectable so TTL expiry can be exercised without sleeping.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time

	// Fail simulates an unreachable cache: every operation errors and
	// Available reports false.
	Fail bool
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore constructs an empty MemoryStore using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock overrides the clock used for expiry checks.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.now = now
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail {
		return nil, false, errUnavailable
	}

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail {
		return errUnavailable
	}

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail {
		return errUnavailable
	}

	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

func (s *MemoryStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail {
		return 0, 0, errUnavailable
	}

	now := s.now()
	entry, ok := s.entries[key]
	count := int64(1)
	if ok && (entry.expiresAt.IsZero() || now.Before(entry.expiresAt)) {
		count = parseCount(entry.value) + 1
		s.entries[key] = memoryEntry{value: formatCount(count), expiresAt: entry.expiresAt}
		return count, entry.expiresAt.Sub(now), nil
	}

	s.entries[key] = memoryEntry{value: formatCount(count), expiresAt: now.Add(window)}
	return count, window, nil
}

func (s *MemoryStore) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.Fail
}

// Contains reports whether a live (non-expired) entry exists for key.
func (s *MemoryStore) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return false
	}
	return entry.expiresAt.IsZero() || s.now().Before(entry.expiresAt)
}

func parseCount(value []byte) int64 {
	n, _ := strconv.ParseInt(string(value), 10, 64)
	return n
}

func formatCount(count int64) []byte {
	return []byte(strconv.FormatInt(count, 10))
}

// TTLOf returns the remaining TTL recorded for key, or zero when absent.
func (s *MemoryStore) TTLOf(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.expiresAt.IsZero() {
		return 0
	}
	return entry.expiresAt.Sub(s.now())
}
