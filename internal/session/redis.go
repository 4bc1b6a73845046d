package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	maxCreateRetries = 3
)

// RedisStore はセッションを Redis に保存します。
// キーには TTL を付け、参照時にも ExpiresAt を確認します。
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client, opts ...Option) *RedisStore {
	o := buildOptions(opts)
	return &RedisStore{
		rdb: rdb,
		ttl: o.ttl,
		now: o.now,
	}
}

// Create はセッションを作成します。ID が衝突した場合は作り直します。
func (s *RedisStore) Create(ctx context.Context, principal Principal) (*Session, error) {
	now := s.now().UTC()
	for i := 0; i < maxCreateRetries; i++ {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		sess := &Session{
			ID:        id,
			Principal: principal,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl),
		}
		payload, err := json.Marshal(sess)
		if err != nil {
			return nil, err
		}
		ok, err := s.rdb.SetNX(ctx, sessionKey(id), payload, s.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		if ok {
			return sess, nil
		}
	}
	return nil, fmt.Errorf("save session: id collision after %d attempts", maxCreateRetries)
}

// Get はセッションのユーザーを返します。
func (s *RedisStore) Get(ctx context.Context, id string) (*Principal, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Expired(s.now()) {
		_ = s.rdb.Del(ctx, sessionKey(id)).Err()
		return nil, ErrNotFound
	}
	return &sess.Principal, nil
}

// Destroy はセッションを削除します。
func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
