package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T, opts ...Option) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return NewRedisStore(rdb, opts...), mr
}

func TestRedisStoreCreateGetDestroy(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStoreTest(t)

	sess, err := store.Create(ctx, Principal{Username: "admin"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !mr.Exists(sessionKey(sess.ID)) {
		t.Fatal("expected session key in redis")
	}
	if ttl := mr.TTL(sessionKey(sess.ID)); ttl != DefaultTTL {
		t.Fatalf("unexpected key ttl: %s", ttl)
	}

	principal, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if principal.Username != "admin" {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if err := store.Destroy(ctx, sess.ID); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	if err := store.Destroy(ctx, sess.ID); err != nil {
		t.Fatalf("second Destroy returned error: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after destroy, got %v", err)
	}
}

func TestRedisStoreKeyExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStoreTest(t, WithTTL(time.Minute))

	sess, err := store.Create(ctx, Principal{Username: "admin"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	mr.FastForward(time.Minute + time.Second)

	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after key expiry, got %v", err)
	}
}

func TestRedisStoreLazyExpiryCheck(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store, mr := newRedisStoreTest(t, WithTTL(time.Hour), WithClock(clock.Now))

	sess, err := store.Create(ctx, Principal{Username: "admin"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	clock.Advance(time.Hour + time.Second)
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound past expiresAt, got %v", err)
	}
	if mr.Exists(sessionKey(sess.ID)) {
		t.Fatal("expired key should be purged on read")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStoreTest(t)
	mr.Close()

	if _, err := store.Create(ctx, Principal{Username: "admin"}); err == nil {
		t.Fatal("expected error when redis is down")
	}
	_, err := store.Get(ctx, "some-id")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStoreTest(t)
	if err := mr.Set(sessionKey("broken"), "{not json"); err != nil {
		t.Fatalf("miniredis set: %v", err)
	}
	_, err := store.Get(ctx, "broken")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
