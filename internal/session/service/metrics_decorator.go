package service

import (
	"context"
	"time"

	"github.com/elioti/elioti/internal/metrics"
	sessionDomain "github.com/elioti/elioti/internal/session/domain"
)

// sessionManagerWithMetrics decorates SessionManager with metrics instrumentation.
type sessionManagerWithMetrics struct {
	next    SessionManager
	metrics metrics.BusinessMetrics
}

// NewSessionManagerWithMetrics wraps a SessionManager with metrics recording.
func NewSessionManagerWithMetrics(manager SessionManager, m metrics.BusinessMetrics) SessionManager {
	return &sessionManagerWithMetrics{
		next:    manager,
		metrics: m,
	}
}

// Issue records metrics for token issuance.
func (s *sessionManagerWithMetrics) Issue(
	userID, email string,
	extra map[string]any,
) (*sessionDomain.Session, error) {
	start := time.Now()
	session, err := s.next.Issue(userID, email, extra)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(context.Background(), "session", "issue", status)
	s.metrics.RecordDuration(context.Background(), "session", "issue", time.Since(start), status)

	return session, err
}

// Verify records metrics for token verification.
func (s *sessionManagerWithMetrics) Verify(token string) (*sessionDomain.Identity, error) {
	start := time.Now()
	identity, err := s.next.Verify(token)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(context.Background(), "session", "verify", status)
	s.metrics.RecordDuration(context.Background(), "session", "verify", time.Since(start), status)

	return identity, err
}

// Revoke records metrics for token revocation.
func (s *sessionManagerWithMetrics) Revoke(token string) {
	s.next.Revoke(token)
	s.metrics.RecordOperation(context.Background(), "session", "revoke", "success")
}

// Refresh records metrics for token refresh.
func (s *sessionManagerWithMetrics) Refresh(token string) (*sessionDomain.Session, error) {
	start := time.Now()
	session, err := s.next.Refresh(token)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(context.Background(), "session", "refresh", status)
	s.metrics.RecordDuration(context.Background(), "session", "refresh", time.Since(start), status)

	return session, err
}

// IsWellFormed delegates without recording; the structural check is too cheap
// to be worth a series.
func (s *sessionManagerWithMetrics) IsWellFormed(token string) bool {
	return s.next.IsWellFormed(token)
}

// Run delegates to the underlying sweeper.
func (s *sessionManagerWithMetrics) Run(ctx context.Context) {
	s.next.Run(ctx)
}

// RevokedCount delegates to the underlying revocation set.
func (s *sessionManagerWithMetrics) RevokedCount() int {
	return s.next.RevokedCount()
}
