package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/zilaportal/portal/internal/domain/rules"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	MaxPasswordLength = 72
)

func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", rules.NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return "", rules.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword returns ErrInvalidCredentials on mismatch.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrHashTooShort) {
		return ErrInvalidCredentials
	}
	return fmt.Errorf("compare password: %w", err)
}
