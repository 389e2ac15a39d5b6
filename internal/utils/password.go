package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when asked to hash an empty password.
var ErrEmptyPassword = errors.New("senha vazia")

// HashPassword hashes a staff password. Costs outside bcrypt's range fall
// back to bcrypt.DefaultCost.
func HashPassword(senha string, cost int) (string, error) {
	if senha == "" {
		return "", ErrEmptyPassword
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(senha), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether senha matches the stored hash. Accounts
// without a hash never match.
func VerifyPassword(hash, senha string) bool {
	if hash == "" || senha == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha)) == nil
}
