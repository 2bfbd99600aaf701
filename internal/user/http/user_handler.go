// Package http provides HTTP handlers for user-related operations.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/elioti/elioti/internal/httputil"
	"github.com/elioti/elioti/internal/user/domain"
	"github.com/elioti/elioti/internal/user/http/dto"
	"github.com/elioti/elioti/internal/user/usecase"
)

// Pagination bounds for list endpoints.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userUseCase usecase.UseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// GetUserHandler returns a single user profile.
// GET /v1/users/:userId - Requires ownership of the target user.
func (h *UserHandler) GetUserHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrUserNotFound, h.logger)
		return
	}

	user, err := h.userUseCase.GetUserByID(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.WriteSuccess(c, http.StatusOK, dto.ToUserResponse(user))
}

// ListUsersHandler returns a paginated list of users.
// GET /v1/admin/users - Requires the admin role.
func (h *UserHandler) ListUsersHandler(c *gin.Context) {
	offset, limit := parsePagination(c)

	users, err := h.userUseCase.ListUsers(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.WriteSuccess(c, http.StatusOK, dto.ToListUsersResponse(users))
}

// parsePagination reads offset/limit query parameters with sane bounds.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return offset, limit
}
