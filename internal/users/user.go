// Package users はログインユーザーの資格情報を管理します。
package users

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound はユーザーが存在しない場合に返されます。
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser は同名のユーザーが既に存在する場合に返されます。
	ErrDuplicateUser = errors.New("duplicate user")
)

// User はユーザー名とパスワードハッシュの組です。
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Store は資格情報の保存先です。
// ユーザー名は大文字小文字を区別する完全一致で扱います。
type Store interface {
	// FindByUsername はユーザーを返します。存在しない場合は ErrUserNotFound です。
	FindByUsername(ctx context.Context, username string) (*User, error)
	// Create はユーザーを作成します。既に存在する場合は ErrDuplicateUser です。
	Create(ctx context.Context, username, passwordHash string) (*User, error)
}
