package security

import (
	"crypto/hmac"
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// Hasher performs one-way password hashing and verification.
// An optional pepper is applied via HMAC-SHA256 before bcrypt, so stored
// hashes are only verifiable by a process that knows the pepper.
type Hasher struct {
	pepper string
	cost   int
}

// NewHasher creates a Hasher. A cost of 0 selects bcrypt.DefaultCost;
// an empty pepper disables peppering.
func NewHasher(pepper string, cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{pepper: pepper, cost: cost}
}

// applyPepper applies HMAC-SHA256 using the pepper as the key.
func (h *Hasher) applyPepper(password string) []byte {
	if h.pepper == "" {
		return []byte(password)
	}
	mac := hmac.New(sha256.New, []byte(h.pepper))
	mac.Write([]byte(password))
	return mac.Sum(nil)
}

// HashPassword generates a bcrypt hash of the password. bcrypt embeds a
// random salt, so repeated calls with the same input produce different
// hashes that all verify.
func (h *Hasher) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(h.applyPepper(password), h.cost)
	return string(bytes), err
}

// CheckPassword compares a plain text password with a stored hash.
// Returns false for malformed hashes rather than an error; bcrypt's
// comparison of digest bytes is constant-time.
func (h *Hasher) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), h.applyPepper(password))
	return err == nil
}
