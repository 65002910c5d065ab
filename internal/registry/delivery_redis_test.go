package registry

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisDeliveryStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisDeliveryStore(client, time.Hour), mr
}

func TestRedisDeliveryStoreRoundTrip(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	at := time.Date(2026, 2, 9, 12, 0, 0, 500_000_000, time.UTC)

	if err := store.Replace(ctx, "ev1", map[string]time.Time{"s1": at}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !mr.Exists("delivered:ev1:s1") {
		t.Fatal("expected redis key to be set")
	}

	got, ok, err := store.Get(ctx, "ev1", "s1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !got.Equal(at) {
		t.Fatalf("expected %v, got %v", at, got)
	}
}

func TestRedisDeliveryStoreReplaceDropsStaleSessions(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.Replace(ctx, "ev1", map[string]time.Time{"s1": now, "s2": now}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := store.Replace(ctx, "ev1", map[string]time.Time{"s1": now}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if _, ok, _ := store.Get(ctx, "ev1", "s2"); ok {
		t.Fatal("stale session timestamp should be gone after replace")
	}
	if _, ok, _ := store.Get(ctx, "ev1", "s1"); !ok {
		t.Fatal("current session timestamp should survive replace")
	}
}

func TestRedisDeliveryStoreMissingKey(t *testing.T) {
	store, _ := newTestRedisStore(t)

	_, ok, err := store.Get(context.Background(), "ev1", "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("missing key should report not-found, not an error")
	}
}
