package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore はプロセス内のマップでセッションを保持します。
// 再起動するとすべてのセッションは失われます。
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore は MemoryStore を作成します。
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		sessions: make(map[string]Session),
		ttl:      o.ttl,
		now:      o.now,
	}
}

// Create はセッションを作成します。
func (s *MemoryStore) Create(ctx context.Context, principal Principal) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	for {
		candidate, err := newID()
		if err != nil {
			return nil, err
		}
		if _, exists := s.sessions[candidate]; !exists {
			id = candidate
			break
		}
	}

	now := s.now()
	sess := Session{
		ID:        id,
		Principal: principal,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.sessions[id] = sess
	return &sess, nil
}

// Get はセッションのユーザーを返します。期限切れのエントリはここで削除します。
func (s *MemoryStore) Get(ctx context.Context, id string) (*Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	principal := sess.Principal
	return &principal, nil
}

// Destroy はセッションを削除します。
func (s *MemoryStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len は保持しているエントリ数を返します（期限切れを含む）。
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
