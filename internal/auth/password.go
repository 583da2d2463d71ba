package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is the longest password bcrypt accepts without truncation.
const MaxPasswordLength = 72

// ErrPasswordTooLong is returned when a password exceeds MaxPasswordLength bytes.
var ErrPasswordTooLong = errors.New("password too long")

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value in constant time.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
