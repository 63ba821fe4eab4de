package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grocerylab/grocery-api/internal/models"
)

// DatabaseStore implements the cache Store interface using the primary SQL
// database. It is the fallback backend when Redis is unavailable; expired
// rows are purged by the maintenance cleaner.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseStore constructs a database-backed Store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, now: time.Now}
}

// WithClock overrides the store's time source. Used by tests to exercise TTL
// expiry without sleeping.
func (s *DatabaseStore) WithClock(clock func() time.Time) *DatabaseStore {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Get retrieves a value by key, respecting expiry.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s == nil {
		return nil, false, errors.New("cache: database store not initialised")
	}

	var entry models.CacheEntry
	err := s.db.WithContext(ctx).Take(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if !entry.ExpiresAt.IsZero() && s.now().After(entry.ExpiresAt) {
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}

	return entry.Value, true, nil
}

// Set upserts the value for a given key with expiry. Empty values are
// ignored so absence is never cached.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s == nil {
		return errors.New("cache: database store not initialised")
	}
	if len(value) == 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: s.now().Add(ttl),
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).Create(&entry).Error
}

// Delete removes keys from the store.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if s == nil {
		return errors.New("cache: database store not initialised")
	}
	if len(keys) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&models.CacheEntry{}).Error
}

// Scan enumerates live keys matching the glob pattern. The database backend
// answers in a single page; the returned cursor is always zero.
func (s *DatabaseStore) Scan(ctx context.Context, cursor uint64, pattern string, count int64) (uint64, []string, error) {
	if s == nil {
		return 0, nil, errors.New("cache: database store not initialised")
	}
	if count <= 0 || count > maxScanCount {
		count = maxScanCount
	}

	var keys []string
	err := s.db.WithContext(ctx).
		Model(&models.CacheEntry{}).
		Where("key LIKE ?", globToLike(pattern)).
		Where("expires_at > ?", s.now()).
		Limit(int(count)).
		Pluck("key", &keys).Error
	if err != nil {
		return 0, nil, err
	}
	return 0, keys, nil
}

// IncrementWithTTL atomically increments a counter for the supplied key. The
// window is fixed: the expiry is set when the counter starts and later
// increments leave it untouched, matching the Redis backend.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s == nil {
		return 0, 0, errors.New("cache: database store not initialised")
	}
	if window <= 0 {
		window = time.Minute
	}

	now := s.now()

	var count int64
	var expiresAt time.Time

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.CacheEntry
		// Acquire row-level lock
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&entry, "key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			count = 1
			expiresAt = now.Add(window)
			entry = models.CacheEntry{
				Key:       key,
				Value:     []byte("1"),
				ExpiresAt: expiresAt,
			}
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		if entry.ExpiresAt.Before(now) {
			count = 1
			entry.Value = []byte("1")
			entry.ExpiresAt = now.Add(window)
		} else {
			current, _ := strconv.ParseInt(string(entry.Value), 10, 64)
			count = current + 1
			entry.Value = []byte(strconv.FormatInt(count, 10))
		}
		expiresAt = entry.ExpiresAt

		return tx.Save(&entry).Error
	})
	if err != nil {
		return 0, 0, err
	}

	return count, expiresAt.Sub(now), nil
}

// PurgeExpired removes rows whose expiry has elapsed. Invoked by the
// maintenance cleaner.
func (s *DatabaseStore) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, errors.New("cache: database store not initialised")
	}

	result := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}

// globToLike converts a Redis-style glob into a SQL LIKE pattern. Only the
// wildcard forms produced by InvalidationPattern are expected.
func globToLike(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "%", `\%`)
	pattern = strings.ReplaceAll(pattern, "_", `\_`)
	pattern = strings.ReplaceAll(pattern, "*", "%")
	pattern = strings.ReplaceAll(pattern, "?", "_")
	return pattern
}
