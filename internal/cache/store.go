package cache

import (
	"context"
	"time"
)

// DefaultTTL is the fallback expiry applied to cached entity reads.
const DefaultTTL = time.Hour

// maxScanCount bounds a single SCAN page so invalidation sweeps cannot issue
// unbounded requests against the backend.
const maxScanCount = 10000

// Store represents a shared cache interface used across the application.
//
// Set with an empty value is a no-op: absence is never cached, so a missing
// row cannot be pinned as a permanent negative entry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, cursor uint64, pattern string, count int64) (uint64, []string, error)
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// DeleteMatching removes every key matching the glob pattern, paging through
// the full key space. Callers must not assume a single Scan call enumerates
// all matches.
func DeleteMatching(ctx context.Context, store Store, pattern string) error {
	var cursor uint64
	for {
		next, keys, err := store.Scan(ctx, cursor, pattern, maxScanCount)
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := store.Delete(ctx, keys...); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
