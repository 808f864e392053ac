// Package auth issues and verifies credentials: argon2id password hashes
// and HS256 bearer tokens carrying the authenticated principal.
package auth

import (
	"context"

	"github.com/vitabu/textbook-store/internal/models"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID       int64
	Username string
	Role     models.Role
}

type ctxKey int

const principalKey ctxKey = iota

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the request principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
