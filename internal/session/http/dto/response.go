package dto

import (
	"time"

	sessionDomain "github.com/elioti/elioti/internal/session/domain"
	userDomain "github.com/elioti/elioti/internal/user/domain"
)

// UserResponse represents a user in API responses (excludes password).
type UserResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	IsActive    bool     `json:"is_active"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *userDomain.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Permissions: user.Permissions,
		IsActive:    user.IsActive,
	}
}

// SessionResponse contains the result of a login or registration.
// SECURITY: The token is a bearer credential and must be stored securely by the client.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// MapSessionToResponse converts a session and its user to an API response.
func MapSessionToResponse(session *sessionDomain.Session, user *userDomain.User) SessionResponse {
	return SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      MapUserToResponse(user),
	}
}

// RefreshResponse contains the result of a token refresh.
type RefreshResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
