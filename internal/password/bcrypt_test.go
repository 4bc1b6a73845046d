package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected different hashes for the same input (per-call salt)")
	}
	if !h.Verify("secret", first) || !h.Verify("secret", second) {
		t.Fatal("expected both hashes to verify")
	}
	if h.Verify("wrong", first) {
		t.Fatal("wrong password must not verify")
	}
}

func TestVerifyMalformedInput(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	if h.Verify("secret", "") {
		t.Fatal("empty hash must not verify")
	}
	if h.Verify("secret", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash must not verify")
	}

	hashed, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if h.Verify(strings.Repeat("x", 200), hashed) {
		t.Fatal("oversized password must not verify")
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultCost},
		{-3, DefaultCost},
		{1, bcrypt.MinCost},
		{12, 12},
		{99, bcrypt.MaxCost},
	}
	for _, tc := range cases {
		if got := NewHasher(tc.in).Cost(); got != tc.want {
			t.Fatalf("NewHasher(%d).Cost() = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHashEmbedsCost(t *testing.T) {
	h := NewHasher(5)
	hashed, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		t.Fatalf("bcrypt.Cost returned error: %v", err)
	}
	if cost != 5 {
		t.Fatalf("unexpected cost: %d", cost)
	}
}
