// Package service implements session token issuance, verification, refresh,
// and blacklist-based revocation.
package service

import (
	"context"

	sessionDomain "github.com/elioti/elioti/internal/session/domain"
)

// SessionManager is the sole authority for producing and validating session
// tokens. Implementations hold the signing secret and the revocation set.
type SessionManager interface {
	// Issue creates a signed session token for the given subject. The extra map
	// carries optional caller-supplied payload fields; reserved field names
	// (userId, email, iat, exp) cannot be overridden.
	Issue(userID, email string, extra map[string]any) (*sessionDomain.Session, error)

	// Verify validates a token and returns the identity it asserts. An invalid
	// token (revoked, malformed, bad signature, or expired) returns
	// ErrInvalidSession; verification is binary and the failing check is not
	// exposed.
	Verify(token string) (*sessionDomain.Identity, error)

	// Revoke adds the token to the revocation set. Idempotent; accepts tokens
	// that are expired or otherwise invalid.
	Revoke(token string)

	// Refresh mints a new session for the subject of a token whose signature
	// verifies, ignoring expiry. The old token is not revoked. Returns
	// ErrSessionNotRefreshable when the signature does not verify.
	Refresh(token string) (*sessionDomain.Session, error)

	// IsWellFormed reports whether the token is structurally a session token
	// (three segments, payload carries the required fields). It computes no
	// signature and must never stand in for Verify.
	IsWellFormed(token string) bool

	// Run prunes expired entries from the revocation set periodically until the
	// context is cancelled. Intended to run in its own goroutine.
	Run(ctx context.Context)

	// RevokedCount returns the current size of the revocation set. Monitoring
	// hook; the count includes entries awaiting the next sweep.
	RevokedCount() int
}
