package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	auditDomain "github.com/elioti/elioti/internal/audit/domain"
	auditUseCase "github.com/elioti/elioti/internal/audit/usecase"
	apperrors "github.com/elioti/elioti/internal/errors"
	"github.com/elioti/elioti/internal/httputil"
	sessionDomain "github.com/elioti/elioti/internal/session/domain"
	sessionService "github.com/elioti/elioti/internal/session/service"
)

const (
	// headerAuthToken is the fallback header checked when no Bearer token is present.
	headerAuthToken = "X-Auth-Token"

	// cookieAuthToken is the session cookie checked last.
	cookieAuthToken = "authToken"

	// auditWriteTimeout bounds the fire-and-forget audit writes spawned by the
	// middleware; they run detached from the request context.
	auditWriteTimeout = 5 * time.Second
)

// UserDirectory is the persistence lookup consumed by the role, permission,
// and ownership checks. Implementations must return ErrNotFound for unknown
// or inactive subjects; any other error is treated as a failed authorization
// check (fail closed).
type UserDirectory interface {
	GetRole(ctx context.Context, userID string) (string, error)
	GetPermissions(ctx context.Context, userID string) ([]string, error)
}

// AuthMiddleware gates request handling behind a verified session identity.
//
// RequireAuth performs token extraction and verification only. RequireRole,
// RequireOwnership, and RequirePermission layer a persistence-backed check on
// top of it; their lookups run with a bounded timeout and fail closed when the
// directory is unavailable.
//
// Every failure path writes the structured error envelope and aborts the Gin
// chain; no middleware method ever falls through to the handler on failure.
type AuthMiddleware struct {
	sessions      sessionService.SessionManager
	directory     UserDirectory
	audit         auditUseCase.EventUseCase
	lookupTimeout time.Duration
	logger        *slog.Logger
}

// NewAuthMiddleware creates the middleware chain. The audit use case is
// optional; pass nil to disable audit events.
func NewAuthMiddleware(
	sessions sessionService.SessionManager,
	directory UserDirectory,
	audit auditUseCase.EventUseCase,
	lookupTimeout time.Duration,
	logger *slog.Logger,
) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:      sessions,
		directory:     directory,
		audit:         audit,
		lookupTimeout: lookupTimeout,
		logger:        logger,
	}
}

// RequireAuth verifies the session token and attaches the authenticated
// identity to the request context. Handlers downstream access it via
// GetIdentity and never re-verify the token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireRole composes with RequireAuth and requires the subject's role to
// match. An unknown subject and a role mismatch produce the same 403 so the
// response does not reveal whether the user exists.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := m.authenticate(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), m.lookupTimeout)
		defer cancel()

		got, err := m.directory.GetRole(ctx, identity.UserID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				m.denyRole(c, identity.UserID, role)
				return
			}
			m.failClosed(c, identity.UserID, err)
			return
		}

		if got != role {
			m.denyRole(c, identity.UserID, role)
			return
		}

		c.Next()
	}
}

// RequireOwnership composes with RequireAuth and requires the authenticated
// subject to match the target user id supplied in the request. The target is
// taken from the userId path parameter, the JSON body, or the query string,
// first present wins.
func (m *AuthMiddleware) RequireOwnership() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := m.authenticate(c)
		if !ok {
			return
		}

		targetUserID := extractTargetUserID(c)
		if targetUserID == "" {
			httputil.WriteError(c, http.StatusBadRequest, httputil.CodeMissingUserID, "User ID required")
			c.Abort()
			return
		}

		if identity.UserID != targetUserID {
			m.logger.Warn("ownership check failed",
				slog.String("user_id", identity.UserID),
				slog.String("target_user_id", targetUserID),
			)
			m.recordAudit(c, identity.UserID, auditDomain.ActionUnauthorizedAccess,
				fmt.Sprintf("Attempted to access user %s data", targetUserID))
			httputil.WriteError(c, http.StatusForbidden, httputil.CodeAccessDenied, "Access denied")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequirePermission composes with RequireAuth and requires the named
// permission to be present in the subject's permission set.
func (m *AuthMiddleware) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := m.authenticate(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), m.lookupTimeout)
		defer cancel()

		permissions, err := m.directory.GetPermissions(ctx, identity.UserID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				m.denyPermission(c, identity.UserID, permission)
				return
			}
			m.failClosed(c, identity.UserID, err)
			return
		}

		if !slices.Contains(permissions, permission) {
			m.denyPermission(c, identity.UserID, permission)
			return
		}

		c.Next()
	}
}

// authenticate extracts and verifies the session token. On success it attaches
// the identity to the request context and returns (identity, true). On failure
// it writes the error envelope, aborts the chain, and returns (nil, false).
func (m *AuthMiddleware) authenticate(c *gin.Context) (*sessionDomain.Identity, bool) {
	token := extractToken(c)
	if token == "" {
		httputil.WriteError(c, http.StatusUnauthorized, httputil.CodeNoToken, "Authentication required")
		c.Abort()
		return nil, false
	}

	// Structural check happens before any signature work.
	if !m.sessions.IsWellFormed(token) {
		httputil.WriteError(c, http.StatusUnauthorized, httputil.CodeInvalidTokenFormat, "Invalid token format")
		c.Abort()
		return nil, false
	}

	identity, err := m.sessions.Verify(token)
	if err != nil {
		m.logger.Debug("authentication failed", slog.String("error", err.Error()))
		httputil.WriteError(c, http.StatusUnauthorized, httputil.CodeInvalidToken, "Token expired or invalid")
		c.Abort()
		return nil, false
	}

	ctx := WithIdentity(c.Request.Context(), identity)
	c.Request = c.Request.WithContext(ctx)

	m.recordAudit(c, identity.UserID, auditDomain.ActionAuthSuccess,
		fmt.Sprintf("User authenticated via %s %s", c.Request.Method, c.Request.URL.Path))

	return identity, true
}

// denyRole writes the role failure response. Shared by the not-found and
// mismatch paths so both are indistinguishable to the client.
func (m *AuthMiddleware) denyRole(c *gin.Context, userID, role string) {
	m.logger.Warn("role check failed",
		slog.String("user_id", userID),
		slog.String("required_role", role),
	)
	httputil.WriteError(c, http.StatusForbidden, httputil.CodeRoleRequired,
		fmt.Sprintf("Role '%s' required", role))
	c.Abort()
}

// denyPermission writes the permission failure response.
func (m *AuthMiddleware) denyPermission(c *gin.Context, userID, permission string) {
	m.logger.Warn("permission check failed",
		slog.String("user_id", userID),
		slog.String("required_permission", permission),
	)
	httputil.WriteError(c, http.StatusForbidden, httputil.CodePermissionDenied,
		fmt.Sprintf("Permission '%s' required", permission))
	c.Abort()
}

// failClosed handles a directory lookup error or timeout. A broken lookup is a
// denial, never a pass.
func (m *AuthMiddleware) failClosed(c *gin.Context, userID string, err error) {
	m.logger.Error("authorization lookup failed",
		slog.String("user_id", userID),
		slog.Any("error", err),
	)
	httputil.WriteError(c, http.StatusForbidden, httputil.CodeAuthCheckError, "Authorization check failed")
	c.Abort()
}

// recordAudit fires an audit write in a detached goroutine. Request metadata
// is captured before the goroutine starts since the Gin context is not safe to
// use after the request completes.
func (m *AuthMiddleware) recordAudit(c *gin.Context, userID, action, details string) {
	if m.audit == nil {
		return
	}

	requestID := requestid.Get(c)
	ip := c.ClientIP()
	userAgent := c.Request.UserAgent()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()

		if err := m.audit.Record(ctx, requestID, userID, action, details, ip, userAgent); err != nil {
			m.logger.Error("failed to record audit event",
				slog.String("user_id", userID),
				slog.String("action", action),
				slog.Any("error", err),
			)
		}
	}()
}

// extractToken pulls the session token from the request. Priority order:
// Authorization Bearer header, X-Auth-Token header, authToken cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	const bearerPrefix = "bearer "
	if len(authHeader) > len(bearerPrefix) &&
		strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return authHeader[len(bearerPrefix):]
	}

	if token := c.GetHeader(headerAuthToken); token != "" {
		return token
	}

	if token, err := c.Cookie(cookieAuthToken); err == nil && token != "" {
		return token
	}

	return ""
}

// ownershipTarget is the JSON body shape inspected for a target user id.
type ownershipTarget struct {
	UserID string `json:"userId"`
}

// extractTargetUserID resolves the user id an ownership check compares
// against. The JSON body is read with ShouldBindBodyWith so the handler can
// still bind it afterwards.
func extractTargetUserID(c *gin.Context) string {
	if userID := c.Param("userId"); userID != "" {
		return userID
	}

	if c.Request.Body != nil && strings.Contains(c.ContentType(), "application/json") {
		var target ownershipTarget
		if err := c.ShouldBindBodyWith(&target, binding.JSON); err == nil && target.UserID != "" {
			return target.UserID
		}
	}

	return c.Query("userId")
}
