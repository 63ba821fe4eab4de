package cache

import (
	"context"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and single-node
// development setups. It honours the same contract as the Redis backend,
// including glob Scan and TTL expiry driven by an injectable clock.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock overrides the store's time source.
func (s *MemoryStore) WithClock(clock func() time.Time) *MemoryStore {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Get retrieves a value by key, respecting expiry.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

// Set stores a value with expiry. Empty values are ignored.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if len(value) == 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: stored, expiresAt: s.now().Add(ttl)}
	return nil
}

// Delete removes keys from the store.
func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

// Scan enumerates live keys matching the glob pattern. Like the Redis SCAN
// command, count is a hint only; this backend already holds everything in
// memory, so it answers with every match in a single page and a zero cursor.
// Truncating at count here would strand matches no cursor could ever reach.
func (s *MemoryStore) Scan(ctx context.Context, cursor uint64, pattern string, count int64) (uint64, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var keys []string
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			continue
		}
		if matched, _ := path.Match(pattern, key); matched {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return 0, keys, nil
}

// IncrementWithTTL increments a counter key within a fixed window.
func (s *MemoryStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	count := int64(0)
	if ok && now.Before(entry.expiresAt) {
		count, _ = strconv.ParseInt(string(entry.value), 10, 64)
		count++
		entry.value = []byte(strconv.FormatInt(count, 10))
		s.entries[key] = entry
		return count, entry.expiresAt.Sub(now), nil
	}

	count = 1
	s.entries[key] = memoryEntry{value: []byte("1"), expiresAt: now.Add(window)}
	return count, window, nil
}

// TTLRemaining reports the remaining lifetime of a key. Zero means absent or
// expired. Test helper.
func (s *MemoryStore) TTLRemaining(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return 0
	}
	remaining := entry.expiresAt.Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}
