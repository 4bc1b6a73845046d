package users

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreExactMatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if _, err := store.Create(ctx, "Admin", "hash"); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := store.FindByUsername(ctx, "admin"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("lookup must be case-sensitive, got %v", err)
	}
	u, err := store.FindByUsername(ctx, "Admin")
	if err != nil {
		t.Fatalf("FindByUsername returned error: %v", err)
	}
	if u.Username != "Admin" || u.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestMemoryStoreDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if _, err := store.Create(ctx, "admin", "a"); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := store.Create(ctx, "admin", "b"); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
}
