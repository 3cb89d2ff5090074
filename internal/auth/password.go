// Package auth issues and verifies bearer tokens, hashes passwords, and carries
// the caller's identity through a request context.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes and compares passwords with bcrypt.
// A zero Cost means bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

// Hash returns the bcrypt hash of password.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("auth.BcryptHasher.Hash: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. A mismatch is (false, nil);
// only a malformed hash is an error.
func (h BcryptHasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("auth.BcryptHasher.Compare: %w", err)
	}
}
