package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
	"github.com/zilaportal/portal/internal/infra/metrics"
)

const (
	MinRefreshTTL = 30 * 24 * time.Hour
	MaxRefreshTTL = 90 * 24 * time.Hour
)

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord, refreshToken string) error
	GetSession(ctx context.Context, sid string) (SessionRecord, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (SessionRecord, error)
	RotateRefresh(ctx context.Context, sid, oldRefreshToken, newRefreshToken string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, sid string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// Credentials checks an email and password pair and returns the account.
type Credentials interface {
	Authenticate(ctx context.Context, email, password string) (model.User, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (model.User, error)
}

type LoginLimiter interface {
	AllowLogin(ctx context.Context, subject string) (int64, bool, error)
	ResetLogin(ctx context.Context, subject string) error
}

type Dependencies struct {
	JWT         *JWTManager
	Sessions    SessionStore
	Credentials Credentials
	Users       UserReader
	Limiter     LoginLimiter
	RefreshTTL  time.Duration
	Logger      *zap.Logger
}

type Service struct {
	jwt         *JWTManager
	sessions    SessionStore
	credentials Credentials
	users       UserReader
	limiter     LoginLimiter
	refreshTTL  time.Duration
	log         *zap.Logger
	now         func() time.Time
}

func NewService(deps Dependencies) *Service {
	refreshTTL := deps.RefreshTTL
	if refreshTTL < MinRefreshTTL {
		refreshTTL = MinRefreshTTL
	}
	if refreshTTL > MaxRefreshTTL {
		refreshTTL = MaxRefreshTTL
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		jwt:         deps.JWT,
		sessions:    deps.Sessions,
		credentials: deps.Credentials,
		users:       deps.Users,
		limiter:     deps.Limiter,
		refreshTTL:  refreshTTL,
		log:         log,
		now:         time.Now,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}
	if s.credentials == nil {
		return AuthResult{}, fmt.Errorf("credentials checker is nil")
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowLogin(ctx, email)
		if err != nil {
			// Throttling is best effort.
			s.log.Warn("login limiter unavailable", zap.Error(err))
		} else if !allowed {
			metrics.LoginAttempts.WithLabelValues("throttled").Inc()
			return AuthResult{}, &RetryAfterError{RetryAfterSec: retryAfter}
		}
	}

	user, err := s.credentials.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("authenticate: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.ResetLogin(ctx, email); err != nil {
			s.log.Warn("reset login limiter", zap.Error(err))
		}
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	return s.Issue(ctx, user)
}

// Issue opens a new session for user and returns its token pair.
func (s *Service) Issue(ctx context.Context, user model.User) (AuthResult, error) {
	if s.sessions == nil || s.jwt == nil {
		return AuthResult{}, fmt.Errorf("auth service dependencies are not configured")
	}
	if strings.TrimSpace(user.ID) == "" {
		return AuthResult{}, ErrInvalidInput
	}

	sessionID := NewSessionID()
	refreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	session := SessionRecord{
		SID:       sessionID,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.sessions.Create(ctx, session, refreshToken); err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(user.ID, sessionID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpires: accessExpires,
		User:          user,
	}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, ErrInvalidInput
	}
	if s.sessions == nil || s.jwt == nil {
		return AuthResult{}, fmt.Errorf("auth service dependencies are not configured")
	}

	session, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("get refresh token session: %w", err)
	}
	if s.now().After(session.ExpiresAt) {
		return AuthResult{}, ErrUnauthorized
	}

	user, err := s.loadUser(ctx, session.UserID)
	if err != nil {
		return AuthResult{}, err
	}

	newRefreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	newExpiresAt := s.now().Add(s.refreshTTL)
	if err := s.sessions.RotateRefresh(ctx, session.SID, refreshToken, newRefreshToken, newExpiresAt); err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(session.UserID, session.SID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  newRefreshToken,
		AccessExpires: accessExpires,
		User:          user,
	}, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}

func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (AccessClaims, error) {
	if s.sessions == nil || s.jwt == nil {
		return AccessClaims{}, fmt.Errorf("auth service dependencies are not configured")
	}
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return AccessClaims{}, ErrUnauthorized
		}
		return AccessClaims{}, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != claims.UserID {
		return AccessClaims{}, ErrUnauthorized
	}
	if s.now().After(session.ExpiresAt) {
		return AccessClaims{}, ErrUnauthorized
	}

	return claims, nil
}

// Resolve validates accessToken and loads the caller's current user types,
// roles and status. Grants take effect on the next request without a new login.
func (s *Service) Resolve(ctx context.Context, accessToken string) (rules.Principal, Identity, error) {
	claims, err := s.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return rules.Principal{}, Identity{}, err
	}
	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		return rules.Principal{}, Identity{}, err
	}
	return user.Principal(), Identity{UserID: claims.UserID, SID: claims.SID}, nil
}

func (s *Service) loadUser(ctx context.Context, userID string) (model.User, error) {
	if s.users == nil {
		return model.User{}, fmt.Errorf("user reader is nil")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, rules.ErrNotFound) {
			return model.User{}, ErrUnauthorized
		}
		return model.User{}, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}
