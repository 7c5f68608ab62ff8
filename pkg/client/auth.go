package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/zilaportal/portal/internal/transport/http/dto"
)

// Register creates an account. It does not sign in: the account starts
// PENDING and the caller logs in once it is approved.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	var out RegisterResponse
	if err := c.DoJSON(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return RegisterResponse{}, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var out dto.AuthTokensResponse
	if err := c.DoJSON(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return User{}, err
	}
	if err := c.session.set(tokensFrom(out), out.User); err != nil {
		return User{}, &RequestError{Op: "save session", Err: err}
	}
	return out.User, nil
}

// Refresh rotates the refresh token. The old one stops working.
func (c *Client) Refresh(ctx context.Context) (User, error) {
	refresh := c.session.refreshToken()
	if refresh == "" {
		return User{}, &RequestError{Op: "refresh session", Err: ErrSessionExpired}
	}
	var out dto.AuthTokensResponse
	if err := c.DoJSON(ctx, http.MethodPost, "/auth/refresh", dto.RefreshRequest{RefreshToken: refresh}, &out); err != nil {
		if StatusCode(err) == http.StatusUnauthorized && c.session.Authenticated() {
			c.expire()
		}
		return User{}, err
	}
	if err := c.session.set(tokensFrom(out), out.User); err != nil {
		return User{}, &RequestError{Op: "save session", Err: err}
	}
	return out.User, nil
}

// Logout ends the server session and clears local state even when the
// server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if !c.session.Authenticated() {
		return nil
	}
	err := c.DoJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.session.clear()
	if errors.Is(err, ErrSessionExpired) {
		return nil
	}
	return err
}

// Me reloads the signed in user so predicates see fresh grants.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	if err := c.DoJSON(ctx, http.MethodGet, "/users/me", nil, &out); err != nil {
		return User{}, err
	}
	c.session.setUser(out)
	return out, nil
}

func tokensFrom(out dto.AuthTokensResponse) Tokens {
	return Tokens{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(out.ExpiresInSec) * time.Second),
	}
}
