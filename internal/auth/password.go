package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// decoyHash is a valid bcrypt hash of a throwaway string. Login compares
// against it when a username does not resolve, so the miss costs the same
// as a wrong password.
const decoyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword hashes a plaintext password using bcrypt. The salt is random
// per call, so equal inputs never produce equal hashes.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", fmt.Errorf("%w: password is empty", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with a stored hash. A
// mismatch returns ErrInvalidCredentials; a hash that bcrypt cannot parse is
// stored-data corruption and is surfaced as a distinct error.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("auth: password hash is empty")
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrInvalidCredentials
	default:
		return fmt.Errorf("auth: corrupt password hash: %w", err)
	}
}
