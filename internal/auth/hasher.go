package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const maxPasswordLength = 72 // bcrypt limit

var hashPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// Hasher hashes and verifies passwords with bcrypt. It holds no mutable
// state and is safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or bcrypt.DefaultCost when cost is out of range.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext.
func (h Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordLength {
		return "", fmt.Errorf("password exceeds maximum length of %d bytes", maxPasswordLength)
	}
	cost := h.cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes never match.
func (h Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// HashIfNeeded hashes plaintext unless it already carries a bcrypt prefix.
func (h Hasher) HashIfNeeded(password string) (string, error) {
	if IsHashed(password) {
		return password, nil
	}
	return h.Hash(password)
}

// IsHashed reports whether s looks like a bcrypt hash.
func IsHashed(s string) bool {
	for _, prefix := range hashPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
