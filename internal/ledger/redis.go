package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"leadrunner/platform/apperr"
)

// keyPrefix namespaces ledger keys in Redis.
const keyPrefix = "leadrunner:processed:"

// RedisStore is a durable ledger backed by Redis. Entries carry a TTL so the
// set does not grow without bound; the TTL must comfortably exceed the
// marketplace's own lookback window for "new" items.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed ledger.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// IsProcessed reports whether the item ID has already been handled.
func (s *RedisStore) IsProcessed(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, keyPrefix+id).Result()
	if err != nil {
		return false, apperr.Gateway(fmt.Sprintf("ledger EXISTS %s", id), err)
	}
	return n > 0, nil
}

// MarkProcessed records the item ID atomically (SETNX), so the first
// timestamp wins even under concurrent marking.
func (s *RedisStore) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	if _, err := s.rdb.SetNX(ctx, keyPrefix+id, at.UTC().Format(time.RFC3339), s.ttl).Result(); err != nil {
		return apperr.Gateway(fmt.Sprintf("ledger SETNX %s", id), err)
	}
	return nil
}

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error { return s.rdb.Close() }

var _ Store = (*RedisStore)(nil)
