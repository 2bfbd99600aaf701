package service

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	sessionDomain "github.com/elioti/elioti/internal/session/domain"
)

const (
	testSecret  = "test-signing-secret"
	testTimeout = 24 * time.Hour
)

func newTestManager() SessionManager {
	return NewSessionManager(testSecret, testTimeout, time.Hour)
}

// signedToken builds a token with arbitrary claims using the same signing
// setup as the manager, so tests can craft expired or foreign tokens.
func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	manager := newTestManager()

	session, err := manager.Issue("user-1", "arben@example.com", nil)
	require.NoError(t, err)
	require.NotNil(t, session)

	// Token is three base64url segments.
	parts := strings.Split(session.Token, ".")
	require.Len(t, parts, 3)

	// Header decodes to the standard HS256 JWT header.
	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"alg":"HS256","typ":"JWT"}`, string(headerJSON))

	// Lifetime equals the configured session timeout.
	assert.Equal(t, testTimeout, session.ExpiresAt.Sub(session.IssuedAt))

	identity, err := manager.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "arben@example.com", identity.Email)
	assert.Equal(t, session.Token, identity.Token)
	assert.Equal(t, session.ExpiresAt.Unix(), identity.ExpiresAt.Unix())
	assert.Equal(t, session.IssuedAt.Unix(), identity.IssuedAt.Unix())
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	manager := newTestManager()

	_, err := manager.Issue("", "arben@example.com", nil)
	assert.Error(t, err)

	_, err = manager.Issue("user-1", "", nil)
	assert.Error(t, err)
}

func TestIssueExtrasCannotOverrideReservedFields(t *testing.T) {
	manager := newTestManager()

	session, err := manager.Issue("user-1", "arben@example.com", map[string]any{
		"userId": "attacker",
		"device": "mobile",
	})
	require.NoError(t, err)

	identity, err := manager.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := newTestManager()

	now := time.Now().UTC()
	expired := signedToken(t, testSecret, jwt.MapClaims{
		"userId": "user-1",
		"email":  "arben@example.com",
		"iat":    now.Add(-48 * time.Hour).Unix(),
		"exp":    now.Add(-24 * time.Hour).Unix(),
	})

	identity, err := manager.Verify(expired)
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, sessionDomain.ErrInvalidSession)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	manager := newTestManager()

	session, err := manager.Issue("user-1", "arben@example.com", nil)
	require.NoError(t, err)

	parts := strings.Split(session.Token, ".")
	payload := []byte(parts[1])

	// Flip a single character anywhere in the payload segment.
	for i := range payload {
		mutated := make([]byte, len(payload))
		copy(mutated, payload)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}

		tampered := parts[0] + "." + string(mutated) + "." + parts[2]
		_, err := manager.Verify(tampered)
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidSession, "flip at index %d", i)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	manager := newTestManager()

	now := time.Now().UTC()
	foreign := signedToken(t, "another-secret", jwt.MapClaims{
		"userId": "user-1",
		"email":  "arben@example.com",
		"iat":    now.Unix(),
		"exp":    now.Add(time.Hour).Unix(),
	})

	_, err := manager.Verify(foreign)
	assert.ErrorIs(t, err, sessionDomain.ErrInvalidSession)
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	manager := newTestManager()

	now := time.Now().UTC()
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": "user-1",
		"email":  "arben@example.com",
		"iat":    now.Unix(),
		"exp":    now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, verifyErr := manager.Verify(unsigned)
	assert.ErrorIs(t, verifyErr, sessionDomain.ErrInvalidSession)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	manager := newTestManager()

	for _, token := range []string{"", "abc.def", "abc.def.ghi.jkl", "not-a-token"} {
		_, err := manager.Verify(token)
		assert.ErrorIs(t, err, sessionDomain.ErrInvalidSession, "token %q", token)
	}
}

func TestRevokeInvalidatesToken(t *testing.T) {
	manager := newTestManager()

	session, err := manager.Issue("user-1", "arben@example.com", nil)
	require.NoError(t, err)

	// Valid before revocation.
	_, err = manager.Verify(session.Token)
	require.NoError(t, err)

	manager.Revoke(session.Token)

	_, err = manager.Verify(session.Token)
	assert.ErrorIs(t, err, sessionDomain.ErrInvalidSession)
}

func TestRevokeIsIdempotent(t *testing.T) {
	manager := newTestManager()

	session, err := manager.Issue("user-1", "arben@example.com", nil)
	require.NoError(t, err)

	manager.Revoke(session.Token)
	manager.Revoke(session.Token)

	assert.Equal(t, 1, manager.RevokedCount())
	_, err = manager.Verify(session.Token)
	assert.ErrorIs(t, err, sessionDomain.ErrInvalidSession)
}

func TestRevokeAcceptsGarbageToken(t *testing.T) {
	manager := newTestManager()

	manager.Revoke("not-a-token")
	assert.Equal(t, 1, manager.RevokedCount())
}

func TestRefreshMintsNewTokenForSameSubject(t *testing.T) {
	manager := newTestManager()

	now := time.Now().UTC()
	old := signedToken(t, testSecret, jwt.MapClaims{
		"userId": "user-1",
		"email":  "arben@example.com",
		"iat":    now.Add(-23 * time.Hour).Unix(),
		"exp":    now.Add(time.Hour).Unix(),
	})

	refreshed, err := manager.Refresh(old)
	require.NoError(t, err)

	assert.Equal(t, "user-1", refreshed.UserID)
	assert.Equal(t, "arben@example.com", refreshed.Email)
	assert.NotEqual(t, old, refreshed.Token)
	assert.Greater(t, refreshed.IssuedAt.Unix(), now.Add(-23*time.Hour).Unix())

	// The source token remains independently valid; refresh does not revoke it.
	_, err = manager.Verify(old)
	assert.NoError(t, err)
}

func TestRefreshAllowsExpiredToken(t *testing.T) {
	manager := newTestManager()

	now := time.Now().UTC()
	expired := signedToken(t, testSecret, jwt.MapClaims{
		"userId": "user-1",
		"email":  "arben@example.com",
		"iat":    now.Add(-48 * time.Hour).Unix(),
		"exp":    now.Add(-24 * time.Hour).Unix(),
	})

	refreshed, err := manager.Refresh(expired)
	require.NoError(t, err)

	_, err = manager.Verify(refreshed.Token)
	assert.NoError(t, err)
}

func TestRefreshRejectsBadSignature(t *testing.T) {
	manager := newTestManager()

	now := time.Now().UTC()
	foreign := signedToken(t, "another-secret", jwt.MapClaims{
		"userId": "user-1",
		"email":  "arben@example.com",
		"iat":    now.Unix(),
		"exp":    now.Add(time.Hour).Unix(),
	})

	_, err := manager.Refresh(foreign)
	assert.ErrorIs(t, err, sessionDomain.ErrSessionNotRefreshable)
}

func TestRefreshedRevokedTokenStaysRevoked(t *testing.T) {
	manager := newTestManager()

	session, err := manager.Issue("user-1", "arben@example.com", nil)
	require.NoError(t, err)
	manager.Revoke(session.Token)

	refreshed, err := manager.Refresh(session.Token)
	require.NoError(t, err)

	_, err = manager.Verify(refreshed.Token)
	assert.NoError(t, err)

	_, err = manager.Verify(session.Token)
	assert.ErrorIs(t, err, sessionDomain.ErrInvalidSession)
}

func TestIsWellFormed(t *testing.T) {
	manager := newTestManager()

	session, err := manager.Issue("user-1", "arben@example.com", nil)
	require.NoError(t, err)

	assert.True(t, manager.IsWellFormed(session.Token))
	assert.False(t, manager.IsWellFormed(""))
	assert.False(t, manager.IsWellFormed("abc.def"))
	assert.False(t, manager.IsWellFormed("abc.def.ghi"))

	// Structurally valid JWT missing the required payload fields.
	now := time.Now().UTC()
	incomplete := signedToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": now.Add(time.Hour).Unix(),
	})
	assert.False(t, manager.IsWellFormed(incomplete))
}

func TestCleanupPrunesOnlyExpiredEntries(t *testing.T) {
	manager := newTestManager().(*sessionManager)

	// A live revoked token must survive the sweep.
	live, err := manager.Issue("user-1", "arben@example.com", nil)
	require.NoError(t, err)
	manager.Revoke(live.Token)

	// An expired revoked token must be dropped.
	now := time.Now().UTC()
	expired := signedToken(t, testSecret, jwt.MapClaims{
		"userId": "user-2",
		"email":  "drita@example.com",
		"iat":    now.Add(-48 * time.Hour).Unix(),
		"exp":    now.Add(-24 * time.Hour).Unix(),
	})
	manager.Revoke(expired)

	require.Equal(t, 2, manager.RevokedCount())

	manager.removeExpired()

	assert.Equal(t, 1, manager.RevokedCount())
	_, err = manager.Verify(live.Token)
	assert.ErrorIs(t, err, sessionDomain.ErrInvalidSession, "sweep must not un-revoke a live token")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	manager := NewSessionManager(testSecret, testTimeout, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.Run(ctx)
		close(done)
	}()

	// Let at least one sweep happen, then stop.
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}

func TestConcurrentRevokeAndVerify(t *testing.T) {
	manager := newTestManager()

	session, err := manager.Issue("user-1", "arben@example.com", nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			manager.Revoke(session.Token)
		}
		close(done)
	}()

	for i := 0; i < 100; i++ {
		_, _ = manager.Verify(session.Token)
	}
	<-done

	_, err = manager.Verify(session.Token)
	assert.ErrorIs(t, err, sessionDomain.ErrInvalidSession)
}
