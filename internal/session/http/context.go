// Package http provides the authentication and authorization middleware chain
// and the session HTTP handlers.
package http

import (
	"context"

	sessionDomain "github.com/elioti/elioti/internal/session/domain"
)

// identityKey is a context key type for storing the authenticated identity.
type identityKey struct{}

// WithIdentity stores the authenticated identity in the context. Called by the
// authentication middleware after successful token verification.
func WithIdentity(ctx context.Context, identity *sessionDomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the authenticated identity from the context. Returns
// (identity, true) when set by the middleware, or (nil, false) otherwise.
// Handlers behind RequireAuth can rely on it being present and never re-verify
// the token themselves.
func GetIdentity(ctx context.Context) (*sessionDomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*sessionDomain.Identity)
	return identity, ok
}
