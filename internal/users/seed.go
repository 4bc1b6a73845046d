package users

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// PasswordHasher はシード時にパスワードをハッシュ化します。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// SeedOptions は初期ユーザー作成の設定です。
type SeedOptions struct {
	Username string
	Password string
	// Quiet が true の場合は作成ログを出しません（本番環境用）。
	Quiet bool
}

// Seed は初期ユーザーが存在しなければ作成します。
// 既存ユーザーのハッシュは上書きしません。何度呼んでも結果は同じです。
// ユーザーを新たに作成した場合に true を返します。
func Seed(ctx context.Context, store Store, hasher PasswordHasher, opts SeedOptions, logger *log.Logger) (bool, error) {
	if opts.Username == "" || opts.Password == "" {
		return false, nil
	}

	_, err := store.FindByUsername(ctx, opts.Username)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, ErrUserNotFound):
		return false, fmt.Errorf("lookup seed user: %w", err)
	}

	hash, err := hasher.Hash(opts.Password)
	if err != nil {
		return false, fmt.Errorf("hash seed password: %w", err)
	}

	if _, err := store.Create(ctx, opts.Username, hash); err != nil {
		// 別プロセスが先に作成した場合も成功扱い
		if errors.Is(err, ErrDuplicateUser) {
			return false, nil
		}
		return false, fmt.Errorf("create seed user: %w", err)
	}

	if !opts.Quiet && logger != nil {
		logger.Printf("初期ユーザー設定：%s（パスワードは非表示）", opts.Username)
	}
	return true, nil
}
