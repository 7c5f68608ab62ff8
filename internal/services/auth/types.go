package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = fmt.Errorf("unauthorized: %w", rules.ErrAuthenticationRequired)
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", rules.ErrAuthenticationRequired)
	ErrSessionNotFound    = errors.New("session not found")
	ErrRefreshNotFound    = errors.New("refresh token not found")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// RetryAfterError reports a throttled login together with the wait time.
type RetryAfterError struct {
	RetryAfterSec int64
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("too many login attempts, retry after %ds", e.RetryAfterSec)
}

func (e *RetryAfterError) Unwrap() error {
	return ErrTooManyAttempts
}

type SessionRecord struct {
	SID       string
	UserID    string
	ExpiresAt time.Time
}

type AccessClaims struct {
	UserID    string
	SID       string
	ExpiresAt time.Time
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	User          model.User
}
