package auth

import (
	"context"

	"github.com/zilaportal/portal/internal/domain/rules"
)

type identityContextKey string

const (
	identityKey  identityContextKey = "auth_identity"
	principalKey identityContextKey = "auth_principal"
)

type Identity struct {
	UserID string
	SID    string
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

func WithPrincipal(ctx context.Context, p rules.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the caller's principal, or the anonymous
// principal when the request carried no valid token.
func PrincipalFromContext(ctx context.Context) rules.Principal {
	p, _ := ctx.Value(principalKey).(rules.Principal)
	return p
}
