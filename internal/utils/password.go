package utils

import (
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// PasswordHasher hashes and checks passwords with bcrypt at a fixed cost
type PasswordHasher struct {
	Cost int
}

// NewPasswordHasher returns a hasher; costs outside bcrypt's range fall back to bcrypt.DefaultCost
func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return PasswordHasher{Cost: cost}
}

// Hash returns the bcrypt digest of password
func (h PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches digest
func (h PasswordHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
