package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every cache key so multiple logical databases can
// share one Redis deployment without collision.
const KeyPrefix = "grocery.auth."

const defaultRedisTimeout = 5 * time.Second

// RedisConfig captures the connection parameters for the Redis-backed store.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
	TLS      bool
	Timeout  time.Duration
}

// RedisStore implements Store on top of a go-redis client. All keys are
// transparently prefixed with KeyPrefix.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store. The connection is verified
// eagerly so misconfiguration surfaces during application startup.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	cfg.Address = strings.TrimSpace(cfg.Address)
	if cfg.Address == "" {
		return nil, errors.New("redis: address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRedisTimeout
	}

	opts := &redis.Options{
		Addr:         cfg.Address,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Get retrieves the value associated with a key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, prefixed(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value with expiry. Empty values are ignored so absence is
// never cached.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if len(value) == 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return s.client.Set(ctx, prefixed(key), value, ttl).Err()
}

// Delete removes one or more keys, ignoring missing keys.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixedKeys := make([]string, len(keys))
	for i, key := range keys {
		prefixedKeys[i] = prefixed(key)
	}
	return s.client.Del(ctx, prefixedKeys...).Err()
}

// Scan pages through keys matching the glob pattern. Returned keys are
// stripped of the process prefix so they can be fed back into Delete.
func (s *RedisStore) Scan(ctx context.Context, cursor uint64, pattern string, count int64) (uint64, []string, error) {
	if count <= 0 || count > maxScanCount {
		count = maxScanCount
	}

	keys, next, err := s.client.Scan(ctx, cursor, prefixed(pattern), count).Result()
	if err != nil {
		return 0, nil, err
	}

	stripped := make([]string, len(keys))
	for i, key := range keys {
		stripped[i] = strings.TrimPrefix(key, KeyPrefix)
	}
	return next, stripped, nil
}

// IncrementWithTTL increments the supplied key and ensures the TTL is set to
// the requested window. It returns the current count and the remaining
// time-to-live.
func (s *RedisStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	prefixedKey := prefixed(key)

	count, err := s.client.Incr(ctx, prefixedKey).Result()
	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, prefixedKey, window).Err(); err != nil {
			return 0, 0, err
		}
	}

	ttl, err := s.client.PTTL(ctx, prefixedKey).Result()
	if err != nil || ttl < 0 {
		return count, window, nil
	}
	return count, ttl, nil
}

func prefixed(key string) string {
	if strings.HasPrefix(key, KeyPrefix) {
		return key
	}
	return KeyPrefix + key
}
