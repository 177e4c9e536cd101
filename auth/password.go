package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/loopline/habit-engine/habit"
)

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", &habit.ValidationError{Field: "password", Message: "must not be empty"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a stored hash against a sign-in attempt.
// A mismatch classifies as ErrInvalidCredentials.
func CheckPassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return habit.ErrInvalidCredentials
	}
	return nil
}
