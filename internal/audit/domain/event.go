// Package domain defines the audit event model. Events record security
// decisions (authentications, denied cross-user access, logouts) and carry an
// HMAC signature so after-the-fact tampering is detectable.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the middleware and handlers.
const (
	ActionAuthSuccess        = "AUTH_SUCCESS"
	ActionUnauthorizedAccess = "UNAUTHORIZED_ACCESS"
	ActionLogout             = "LOGOUT"
)

// Event is a single audit record.
type Event struct {
	ID        uuid.UUID
	RequestID string
	UserID    string
	Action    string
	Details   string
	IP        string
	UserAgent string
	Signature string
	CreatedAt time.Time
}
