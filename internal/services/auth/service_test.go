package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
	"github.com/zilaportal/portal/internal/repo/memory"
	redrepo "github.com/zilaportal/portal/internal/repo/redis"
	authsvc "github.com/zilaportal/portal/internal/services/auth"
	ratesvc "github.com/zilaportal/portal/internal/services/rate"
	"github.com/zilaportal/portal/internal/services/users"
)

type authFixture struct {
	svc   *authsvc.Service
	users *memory.UserRepo
	user  model.User
}

func TestLoginAndResolve(t *testing.T) {
	f := newAuthFixture(t, 0)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "Member@Example.com", "secret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("missing tokens: %+v", res)
	}
	if res.User.ID != f.user.ID {
		t.Fatalf("unexpected user: got %s want %s", res.User.ID, f.user.ID)
	}

	p, identity, err := f.svc.Resolve(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.UserID != f.user.ID || identity.SID == "" {
		t.Fatalf("unexpected principal: %+v identity: %+v", p, identity)
	}

	if _, err := f.svc.Login(ctx, "member@example.com", "wrong-pass"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := f.svc.Login(ctx, "member@example.com", "wrong-pass"); !errors.Is(err, rules.ErrAuthenticationRequired) {
		t.Fatalf("invalid credentials should unwrap to authentication required, got %v", err)
	}
}

func TestResolveReflectsGrantsWithoutRelogin(t *testing.T) {
	f := newAuthFixture(t, 0)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "member@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := f.users.UpdateStatus(ctx, f.user.ID, []enums.ApprovalStatus{enums.ApprovalStatusPending}, enums.ApprovalStatusApproved, time.Now()); err != nil {
		t.Fatalf("approve user: %v", err)
	}

	p, _, err := f.svc.Resolve(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.Status != enums.ApprovalStatusApproved {
		t.Fatalf("principal should carry the fresh status, got %s", p.Status)
	}
}

func TestRefreshRotation(t *testing.T) {
	f := newAuthFixture(t, 0)
	ctx := context.Background()

	loginRes, err := f.svc.Login(ctx, "member@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshRes, err := f.svc.Refresh(ctx, loginRes.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshRes.RefreshToken == loginRes.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}
	if _, err := f.svc.Refresh(ctx, loginRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token should be unauthorized, got err=%v", err)
	}
	if _, err := f.svc.ValidateAccessToken(ctx, refreshRes.AccessToken); err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	f := newAuthFixture(t, 0)
	ctx := context.Background()

	loginRes, err := f.svc.Login(ctx, "member@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := f.svc.ValidateAccessToken(ctx, loginRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}
	if err := f.svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.svc.ValidateAccessToken(ctx, loginRes.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}
	if _, err := f.svc.Refresh(ctx, loginRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("refresh token should be unauthorized after logout, got err=%v", err)
	}
}

func TestLoginThrottling(t *testing.T) {
	f := newAuthFixture(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.svc.Login(ctx, "member@example.com", "bad-pass-1"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
			t.Fatalf("attempt #%d: got %v", i+1, err)
		}
	}

	_, err := f.svc.Login(ctx, "member@example.com", "secret-pass")
	var retry *authsvc.RetryAfterError
	if !errors.As(err, &retry) {
		t.Fatalf("expected throttling, got %v", err)
	}
	if retry.RetryAfterSec <= 0 || !errors.Is(err, authsvc.ErrTooManyAttempts) {
		t.Fatalf("unexpected throttle error: %+v", retry)
	}
}

func TestParseRejectsForeignTokens(t *testing.T) {
	manager := authsvc.NewJWTManager("one-secret", time.Minute)
	token, _, err := manager.GenerateAccessToken("user-1", "sid-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := authsvc.NewJWTManager("other-secret", time.Minute).ParseAccessToken(token); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("foreign signature: got %v", err)
	}
	if _, err := manager.ParseAccessToken("not-a-token"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("garbage token: got %v", err)
	}
	claims, err := manager.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.SID != "sid-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestPasswordHashing(t *testing.T) {
	if _, err := authsvc.HashPassword("short"); !errors.Is(err, rules.ErrValidation) {
		t.Fatalf("short password: got %v", err)
	}
	hash, err := authsvc.HashPassword("long-enough")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := authsvc.CheckPassword(hash, "long-enough"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := authsvc.CheckPassword(hash, "long-enougH"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("mismatch: got %v", err)
	}
}

func newAuthFixture(t *testing.T, loginsPerMinute int) authFixture {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mini.Close()
	})

	userRepo := memory.NewUserRepo(memory.New())
	userService := users.NewService(users.Dependencies{Store: userRepo})
	reg, err := userService.Register(context.Background(), users.RegisterInput{
		Email:    "member@example.com",
		Password: "secret-pass",
		FullName: "Member",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var limiter authsvc.LoginLimiter
	if loginsPerMinute > 0 {
		limiter = ratesvc.NewLimiter(redrepo.NewRateRepo(client), loginsPerMinute, 0)
	}

	svc := authsvc.NewService(authsvc.Dependencies{
		JWT:         authsvc.NewJWTManager("test-secret", 15*time.Minute),
		Sessions:    redrepo.NewSessionRepo(client),
		Credentials: userService,
		Users:       userRepo,
		Limiter:     limiter,
		RefreshTTL:  45 * 24 * time.Hour,
	})
	return authFixture{svc: svc, users: userRepo, user: reg.User}
}
