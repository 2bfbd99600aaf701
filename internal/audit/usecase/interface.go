// Package usecase implements audit event recording and verification.
package usecase

import (
	"context"

	auditDomain "github.com/elioti/elioti/internal/audit/domain"
)

// EventRepository defines persistence operations for audit events.
type EventRepository interface {
	// Create stores a new audit event.
	Create(ctx context.Context, event *auditDomain.Event) error

	// List retrieves audit events ordered by created_at descending with pagination.
	List(ctx context.Context, offset, limit int) ([]*auditDomain.Event, error)
}

// EventUseCase defines the audit operations used by the middleware, the
// handlers, and the verification command.
type EventUseCase interface {
	// Record signs and persists one audit event. Callers treat it as
	// best-effort: a failure is returned for logging but must never fail the
	// request that triggered the event.
	Record(ctx context.Context, requestID, userID, action, details, ip, userAgent string) error

	// VerifyAll re-checks the signature of every stored event. Returns the
	// number of events inspected and the IDs of events whose signatures do not
	// match.
	VerifyAll(ctx context.Context) (total int, invalid []string, err error)
}
