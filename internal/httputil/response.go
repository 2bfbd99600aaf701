// Package httputil provides HTTP utility functions for request and response handling.
//
// All error responses share the envelope used by the API:
//
//	{"success": false, "error": {"message": "...", "code": "...", "timestamp": "..."}}
package httputil

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/elioti/elioti/internal/errors"
)

// Error codes returned in the error envelope.
const (
	CodeNoToken            = "NO_TOKEN"
	CodeInvalidTokenFormat = "INVALID_TOKEN_FORMAT"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeRoleRequired       = "ROLE_REQUIRED"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeMissingUserID      = "MISSING_USER_ID"
	CodeRefreshFailed      = "REFRESH_FAILED"
	CodeAuthCheckError     = "AUTH_CHECK_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeServerError        = "SERVER_ERROR"
)

// ErrorDetail carries the machine-readable code and human-readable message of a
// failed request.
type ErrorDetail struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
}

// ErrorEnvelope is the top-level shape of every error response.
type ErrorEnvelope struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// SuccessEnvelope is the top-level shape of every successful response.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// NewErrorEnvelope builds an error envelope with the current UTC timestamp.
func NewErrorEnvelope(code, message string) ErrorEnvelope {
	return ErrorEnvelope{
		Success: false,
		Error: ErrorDetail{
			Message:   message,
			Code:      code,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// WriteError writes the error envelope without aborting the Gin chain. Callers
// that act as middleware must abort themselves.
func WriteError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, NewErrorEnvelope(code, message))
}

// WriteSuccess writes a success envelope wrapping the given payload.
func WriteSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, SuccessEnvelope{Success: true, Data: data})
}

// HandleErrorGin maps domain errors to HTTP status codes and writes the error
// envelope. Unknown errors are reported as a generic server error so internal
// details never reach the client.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var code, message string

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		code = CodeNotFound
		message = "The requested resource was not found"

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		code = CodeConflict
		message = "A conflict occurred with existing data"

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		code = CodeValidationError
		message = err.Error()

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		code = CodeUnauthorized
		message = "Authentication required"

	case apperrors.Is(err, apperrors.ErrUnavailable):
		// Fail closed: a broken lookup is a denial, not a pass.
		statusCode = http.StatusForbidden
		code = CodeAuthCheckError
		message = "Authorization check failed"

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		code = CodeAccessDenied
		message = "Access denied"

	default:
		statusCode = http.StatusInternalServerError
		code = CodeServerError
		message = "An internal error occurred"
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", code),
			slog.Any("error", err),
		)
	}

	WriteError(c, statusCode, code, message)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	WriteError(c, http.StatusBadRequest, CodeBadRequest, err.Error())
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}
	WriteError(c, http.StatusUnprocessableEntity, CodeValidationError, err.Error())
}
