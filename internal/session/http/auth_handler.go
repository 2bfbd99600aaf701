package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	auditDomain "github.com/elioti/elioti/internal/audit/domain"
	auditUseCase "github.com/elioti/elioti/internal/audit/usecase"
	apperrors "github.com/elioti/elioti/internal/errors"
	"github.com/elioti/elioti/internal/httputil"
	"github.com/elioti/elioti/internal/session/http/dto"
	sessionService "github.com/elioti/elioti/internal/session/service"
	userUseCase "github.com/elioti/elioti/internal/user/usecase"
	customValidation "github.com/elioti/elioti/internal/validation"
)

// Response headers set by the refresh endpoint.
const (
	headerNewToken     = "X-New-Token"
	headerTokenExpires = "X-Token-Expires"
)

// AuthHandler handles registration, login, logout, and token refresh.
type AuthHandler struct {
	users    userUseCase.UseCase
	sessions sessionService.SessionManager
	audit    auditUseCase.EventUseCase
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
// The audit use case is optional; pass nil to disable audit events.
func NewAuthHandler(
	users userUseCase.UseCase,
	sessions sessionService.SessionManager,
	audit auditUseCase.EventUseCase,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		audit:    audit,
		logger:   logger,
	}
}

// RegisterHandler registers a new user and opens a session for them.
// POST /v1/auth/register - No authentication required.
// Returns 201 Created with the session token and the user.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.users.RegisterUser(c.Request.Context(), userUseCase.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	session, err := h.sessions.Issue(user.ID.String(), user.Email, nil)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.WriteSuccess(c, http.StatusCreated, dto.MapSessionToResponse(session, user))
}

// LoginHandler authenticates a user and opens a session.
// POST /v1/auth/login - No authentication required.
// Unknown email and wrong password produce the same 401 response.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			httputil.WriteError(c, http.StatusUnauthorized, httputil.CodeUnauthorized, "Invalid credentials")
			return
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	session, err := h.sessions.Issue(user.ID.String(), user.Email, nil)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.WriteSuccess(c, http.StatusOK, dto.MapSessionToResponse(session, user))
}

// LogoutHandler revokes the current session token.
// POST /v1/auth/logout - Requires authentication.
// Revocation is idempotent; logging out twice with the same token still
// returns success on the first call and 401 on the second (the token is
// already invalid).
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	identity, ok := GetIdentity(c.Request.Context())
	if !ok {
		// RequireAuth was not applied to this route
		httputil.WriteError(c, http.StatusUnauthorized, httputil.CodeNoToken, "Authentication required")
		return
	}

	h.sessions.Revoke(identity.Token)

	h.recordAudit(c, identity.UserID, auditDomain.ActionLogout, "User logged out successfully")

	httputil.WriteSuccess(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// RefreshHandler mints a new token for the subject of the presented token.
// POST /v1/auth/refresh - Accepts expired tokens; only the signature must
// verify. The new token is returned in the body and in the X-New-Token header.
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	token := extractToken(c)
	if token == "" {
		httputil.WriteError(c, http.StatusUnauthorized, httputil.CodeNoToken, "Token required for refresh")
		return
	}

	session, err := h.sessions.Refresh(token)
	if err != nil {
		h.logger.Debug("token refresh failed", slog.String("error", err.Error()))
		httputil.WriteError(c, http.StatusUnauthorized, httputil.CodeRefreshFailed, "Token refresh failed")
		return
	}

	c.Header(headerNewToken, session.Token)
	c.Header(headerTokenExpires, session.ExpiresAt.Format(time.RFC3339))

	httputil.WriteSuccess(c, http.StatusOK, dto.RefreshResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// recordAudit fires an audit write in a detached goroutine, mirroring the
// middleware's best-effort semantics.
func (h *AuthHandler) recordAudit(c *gin.Context, userID, action, details string) {
	if h.audit == nil {
		return
	}

	requestID := requestid.Get(c)
	ip := c.ClientIP()
	userAgent := c.Request.UserAgent()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()

		if err := h.audit.Record(ctx, requestID, userID, action, details, ip, userAgent); err != nil {
			h.logger.Error("failed to record audit event",
				slog.String("user_id", userID),
				slog.String("action", action),
				slog.Any("error", err),
			)
		}
	}()
}
