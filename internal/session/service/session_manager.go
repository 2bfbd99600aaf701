package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/elioti/elioti/internal/errors"
	sessionDomain "github.com/elioti/elioti/internal/session/domain"
)

// Payload field names used in the token. The wire format is a standard HS256
// JWT: three dot-separated base64url segments, payload carrying userId, email,
// iat, and exp as Unix seconds.
const (
	claimUserID = "userId"
	claimEmail  = "email"
	claimIAT    = "iat"
	claimEXP    = "exp"
)

// sessionManager implements SessionManager with HMAC-SHA256 signed tokens and
// an in-memory revocation set. The revocation set does not survive restarts;
// a multi-instance deployment would need a shared expiring store instead.
type sessionManager struct {
	secret          []byte
	timeout         time.Duration
	cleanupInterval time.Duration

	mu      sync.RWMutex
	revoked map[string]time.Time // token -> its exp, for precise pruning
}

// NewSessionManager creates a SessionManager signing with secret. Issued tokens
// expire after timeout; the revocation sweeper runs every cleanupInterval.
func NewSessionManager(secret string, timeout, cleanupInterval time.Duration) SessionManager {
	return &sessionManager{
		secret:          []byte(secret),
		timeout:         timeout,
		cleanupInterval: cleanupInterval,
		revoked:         make(map[string]time.Time),
	}
}

// Issue signs a new token for the subject. Pure computation: the revocation
// set is not touched and no I/O happens.
func (m *sessionManager) Issue(
	userID, email string,
	extra map[string]any,
) (*sessionDomain.Session, error) {
	if userID == "" || email == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "session subject requires user id and email")
	}

	now := time.Now().UTC().Truncate(time.Second)
	expiresAt := now.Add(m.timeout)

	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	// Reserved fields always win over extras.
	claims[claimUserID] = userID
	claims[claimEmail] = email
	claims[claimIAT] = now.Unix()
	claims[claimEXP] = expiresAt.Unix()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign session token")
	}

	return &sessionDomain.Session{
		Token:     token,
		UserID:    userID,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks, in order: revocation, structure, signature, payload, expiry.
// Any failure collapses to ErrInvalidSession.
func (m *sessionManager) Verify(token string) (*sessionDomain.Identity, error) {
	if m.isRevoked(token) {
		return nil, sessionDomain.ErrInvalidSession
	}

	if strings.Count(token, ".") != 2 {
		return nil, sessionDomain.ErrInvalidSession
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	); err != nil {
		return nil, sessionDomain.ErrInvalidSession
	}

	identity, ok := identityFromClaims(claims, token)
	if !ok {
		return nil, sessionDomain.ErrInvalidSession
	}

	return identity, nil
}

// Revoke blacklists the token. The token's own exp is recovered from its
// payload so the sweeper can drop the entry once it could no longer verify
// anyway; unreadable tokens are retained for a full session timeout.
func (m *sessionManager) Revoke(token string) {
	expiresAt := time.Now().UTC().Add(m.timeout)
	if claims, err := decodeClaims(token); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Time
		}
	}

	m.mu.Lock()
	if _, exists := m.revoked[token]; !exists {
		m.revoked[token] = expiresAt
	}
	m.mu.Unlock()
}

// Refresh verifies only the signature (expired tokens are refreshable) and
// issues a brand-new token for the same subject. The old token keeps whatever
// validity state it had.
func (m *sessionManager) Refresh(token string) (*sessionDomain.Session, error) {
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	); err != nil {
		return nil, sessionDomain.ErrSessionNotRefreshable
	}

	userID, _ := claims[claimUserID].(string)
	email, _ := claims[claimEmail].(string)
	if userID == "" || email == "" {
		return nil, sessionDomain.ErrSessionNotRefreshable
	}

	return m.Issue(userID, email, nil)
}

// IsWellFormed performs the cheap structural check: three segments and a
// payload carrying userId, email, and exp. No HMAC is computed.
func (m *sessionManager) IsWellFormed(token string) bool {
	if token == "" || strings.Count(token, ".") != 2 {
		return false
	}

	claims, err := decodeClaims(token)
	if err != nil {
		return false
	}

	userID, _ := claims[claimUserID].(string)
	email, _ := claims[claimEmail].(string)
	_, hasExp := claims[claimEXP]

	return userID != "" && email != "" && hasExp
}

// Run sweeps the revocation set every cleanupInterval, dropping only entries
// whose own exp has passed. An entry whose token could still verify is never
// removed.
func (m *sessionManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

// RevokedCount returns the current size of the revocation set.
func (m *sessionManager) RevokedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.revoked)
}

func (m *sessionManager) removeExpired() {
	now := time.Now().UTC()

	m.mu.Lock()
	for token, expiresAt := range m.revoked {
		if expiresAt.Before(now) {
			delete(m.revoked, token)
		}
	}
	m.mu.Unlock()
}

func (m *sessionManager) isRevoked(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, revoked := m.revoked[token]
	return revoked
}

func (m *sessionManager) keyFunc(*jwt.Token) (any, error) {
	return m.secret, nil
}

// decodeClaims parses the payload segment without verifying the signature.
func decodeClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// identityFromClaims builds the request-scoped identity from verified claims.
func identityFromClaims(claims jwt.MapClaims, token string) (*sessionDomain.Identity, bool) {
	userID, _ := claims[claimUserID].(string)
	email, _ := claims[claimEmail].(string)
	if userID == "" || email == "" {
		return nil, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, false
	}

	identity := &sessionDomain.Identity{
		UserID:    userID,
		Email:     email,
		Token:     token,
		ExpiresAt: exp.Time,
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		identity.IssuedAt = iat.Time
	}

	return identity, true
}
