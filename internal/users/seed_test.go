package users

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

type plainHasher struct {
	calls int
}

func (h *plainHasher) Hash(plaintext string) (string, error) {
	h.calls++
	return "hashed:" + plaintext, nil
}

type failingStore struct {
	findErr   error
	createErr error
}

func (s *failingStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return nil, s.findErr
}

func (s *failingStore) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	return nil, s.createErr
}

func TestSeedCreatesUserOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	hasher := &plainHasher{}
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	opts := SeedOptions{Username: "admin", Password: "secret"}

	created, err := Seed(ctx, store, hasher, opts, logger)
	if err != nil {
		t.Fatalf("first Seed returned error: %v", err)
	}
	if !created {
		t.Fatal("expected first Seed to create the user")
	}

	created, err = Seed(ctx, store, hasher, opts, logger)
	if err != nil {
		t.Fatalf("second Seed returned error: %v", err)
	}
	if created {
		t.Fatal("second Seed must be a no-op")
	}
	if store.Len() != 1 {
		t.Fatalf("expected exactly one user, got %d", store.Len())
	}
	if hasher.calls != 1 {
		t.Fatalf("expected one hash computation, got %d", hasher.calls)
	}
	if !strings.Contains(buf.String(), "admin") || strings.Contains(buf.String(), "secret") {
		t.Fatalf("unexpected seed log: %q", buf.String())
	}
}

func TestSeedDoesNotOverwriteExistingHash(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if _, err := store.Create(ctx, "admin", "original-hash"); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := Seed(ctx, store, &plainHasher{}, SeedOptions{Username: "admin", Password: "other"}, nil); err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}

	u, err := store.FindByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("FindByUsername returned error: %v", err)
	}
	if u.PasswordHash != "original-hash" {
		t.Fatalf("hash was overwritten: %s", u.PasswordHash)
	}
}

func TestSeedSkipsWhenUnconfigured(t *testing.T) {
	store := NewMemoryStore()
	created, err := Seed(context.Background(), store, &plainHasher{}, SeedOptions{Username: "admin"}, nil)
	if err != nil || created {
		t.Fatalf("unexpected result created=%v err=%v", created, err)
	}
	if store.Len() != 0 {
		t.Fatal("no user should be created without a password")
	}
}

func TestSeedQuietSuppressesLog(t *testing.T) {
	var buf bytes.Buffer
	_, err := Seed(context.Background(), NewMemoryStore(), &plainHasher{},
		SeedOptions{Username: "admin", Password: "secret", Quiet: true}, log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
}

func TestSeedTreatsRaceAsNoop(t *testing.T) {
	store := &failingStore{findErr: ErrUserNotFound, createErr: ErrDuplicateUser}
	created, err := Seed(context.Background(), store, &plainHasher{}, SeedOptions{Username: "admin", Password: "secret"}, nil)
	if err != nil || created {
		t.Fatalf("unexpected result created=%v err=%v", created, err)
	}
}

func TestSeedPropagatesStoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	store := &failingStore{findErr: boom}
	_, err := Seed(context.Background(), store, &plainHasher{}, SeedOptions{Username: "admin", Password: "secret"}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
