// Package session はサーバー側で保持するログインセッションを提供します。
//
// クライアントには不透明なセッションIDだけを渡し、ユーザー情報はサーバー側の
// Store に置きます。有効期限は参照時に判定し、アクティビティによる延長はしません。
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// DefaultTTL はセッションの既定の有効期限です。
const DefaultTTL = time.Hour

// idBytes はセッションIDの乱数バイト数です。
const idBytes = 32

// ErrNotFound はセッションが存在しないか期限切れの場合に返されます。
var ErrNotFound = errors.New("session not found")

// Principal は認証済みユーザーを表します。
type Principal struct {
	Username string `json:"username"`
}

// Session はセッションIDとユーザーの対応です。
type Session struct {
	ID        string    `json:"id"`
	Principal Principal `json:"principal"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired は now の時点で期限切れかどうかを返します。
// ExpiresAt ちょうどの時刻は期限切れとして扱います。
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store はセッションの保存先です。各操作は単一キーに対して原子的に動作します。
type Store interface {
	// Create は新しいセッションを作成し、そのIDを含む Session を返します。
	Create(ctx context.Context, principal Principal) (*Session, error)
	// Get はユーザーを返します。未知または期限切れの場合は ErrNotFound です。
	Get(ctx context.Context, id string) (*Principal, error)
	// Destroy はセッションを削除します。存在しなくてもエラーにはなりません。
	Destroy(ctx context.Context, id string) error
}

// Option は Store の挙動を変更します。
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL はセッションの有効期限を設定します。
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock は現在時刻の取得方法を差し替えます（テスト用）。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newID は推測不能なセッションIDを生成します。
func newID() (string, error) {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
