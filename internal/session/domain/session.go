// Package domain defines the session credential model. A session is a signed,
// self-contained token; the server keeps no per-session row, only a revocation
// set for tokens invalidated before their natural expiry.
package domain

import (
	"time"
)

// Session is an issued credential, returned to the client after login,
// registration, or refresh.
type Session struct {
	Token     string
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity is the request-scoped principal produced by a successful token
// verification. It lives for one request and is never persisted.
type Identity struct {
	UserID    string
	Email     string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
