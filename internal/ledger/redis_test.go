package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRedisStore(rdb, ttl)
}

func TestRedisStoreMarkAndCheck(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t, time.Hour)

	processed, err := store.IsProcessed(ctx, "lead-1")
	if err != nil {
		t.Fatalf("IsProcessed: %v", err)
	}
	if processed {
		t.Error("fresh store reports lead-1 as processed")
	}

	if err := store.MarkProcessed(ctx, "lead-1", time.Now()); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	processed, err = store.IsProcessed(ctx, "lead-1")
	if err != nil {
		t.Fatalf("IsProcessed: %v", err)
	}
	if !processed {
		t.Error("marked ID not reported as processed")
	}
}

func TestRedisStoreFirstMarkWins(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := NewRedisStore(rdb, time.Hour)

	first := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	if err := store.MarkProcessed(ctx, "msg-1", first); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	if err := store.MarkProcessed(ctx, "msg-1", first.Add(time.Hour)); err != nil {
		t.Fatalf("second MarkProcessed: %v", err)
	}

	got, err := rdb.Get(ctx, keyPrefix+"msg-1").Result()
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if got != first.Format(time.RFC3339) {
		t.Errorf("stored value = %q, want first timestamp %q", got, first.Format(time.RFC3339))
	}
}

func TestRedisStoreEntriesExpire(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := NewRedisStore(rdb, time.Minute)

	if err := store.MarkProcessed(ctx, "lead-9", time.Now()); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	processed, err := store.IsProcessed(ctx, "lead-9")
	if err != nil {
		t.Fatalf("IsProcessed: %v", err)
	}
	if processed {
		t.Error("expired entry still reported as processed")
	}
}
