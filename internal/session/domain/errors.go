package domain

import (
	"github.com/elioti/elioti/internal/errors"
)

// Session errors.
var (
	// ErrInvalidSession indicates the token failed verification. The cause
	// (signature, expiry, revocation, malformed payload) is deliberately not
	// distinguished to avoid aiding forgery probing.
	ErrInvalidSession = errors.Wrap(errors.ErrUnauthorized, "session invalid or expired")

	// ErrSessionNotRefreshable indicates a refresh was attempted on a token
	// whose signature does not verify.
	ErrSessionNotRefreshable = errors.Wrap(errors.ErrUnauthorized, "session not refreshable")
)
