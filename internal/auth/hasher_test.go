package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hasher := NewHasher(4)

	first, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("hash returned error: %v", err)
	}
	second, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("hash returned error: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct salts per hash")
	}
	if !IsHashed(first) {
		t.Fatalf("expected bcrypt prefix, got %q", first)
	}
	if !hasher.Verify("secret", first) || !hasher.Verify("secret", second) {
		t.Fatalf("expected password to verify against its hash")
	}
	if hasher.Verify("other", first) {
		t.Fatalf("expected different password to be rejected")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher := NewHasher(4)
	for _, hash := range []string{"", "plaintext", "$2b$10$short"} {
		if hasher.Verify("secret", hash) {
			t.Fatalf("expected malformed hash %q to be rejected", hash)
		}
	}
}

func TestHashRejectsLongPassword(t *testing.T) {
	if _, err := NewHasher(4).Hash(strings.Repeat("a", maxPasswordLength+1)); err == nil {
		t.Fatalf("expected error for password over %d bytes", maxPasswordLength)
	}
}

func TestHashIfNeeded(t *testing.T) {
	hasher := NewHasher(4)

	hash, err := hasher.HashIfNeeded("secret")
	if err != nil || !IsHashed(hash) {
		t.Fatalf("expected plaintext to be hashed, got %q (%v)", hash, err)
	}

	again, err := hasher.HashIfNeeded(hash)
	if err != nil || again != hash {
		t.Fatalf("expected hash to pass through unchanged")
	}
}

func TestNewHasherFallsBackToDefaultCost(t *testing.T) {
	if got := NewHasher(99).cost; got != 10 {
		t.Fatalf("expected default cost 10, got %d", got)
	}
}
