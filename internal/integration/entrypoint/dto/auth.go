package dto

import (
	"time"

	"github.com/household-hub/companion/internal/domain/entity"
)

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SessionUserResponse represents the logged-in user.
type SessionUserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResponse represents the response for login.
type LoginResponse struct {
	AccessToken string              `json:"access_token"`
	ExpiresAt   time.Time           `json:"expires_at"`
	User        SessionUserResponse `json:"user"`
}

// ToSessionUserResponse converts a session to its user response.
func ToSessionUserResponse(session *entity.Session) SessionUserResponse {
	return SessionUserResponse{
		ID:    session.UserID,
		Name:  session.UserName,
		Email: session.Email,
		Role:  string(session.Role),
	}
}
