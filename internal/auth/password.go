package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost keeps hashing deliberately expensive to slow brute-force.
const bcryptCost = 10

// HashPassword hashes a plaintext password with bcrypt. The result embeds
// its own salt and is never reversible.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with a stored hash. The
// comparison is delegated to bcrypt so it does not leak timing on early
// byte mismatches.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
