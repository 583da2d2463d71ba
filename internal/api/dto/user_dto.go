package dto

import (
	"time"

	"github.com/linkshelf/bookmark-service/internal/domain"
)

// UserCredentialsRequest is the payload of register and login.
type UserCredentialsRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required"`
}

// LogoutRequest names the user whose session the bearer token should end.
type LogoutRequest struct {
	Username string `json:"username" validate:"required,max=128"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse standard response for auth endpoints. ExpiresAt is omitted for sessions that
// last until logout.
type AuthResponse struct {
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{Username: u.Username, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

// NewAuthResponse builds the auth block; a zero expiry is left out.
func NewAuthResponse(token string, expiresAt time.Time) AuthResponse {
	resp := AuthResponse{Token: token}
	if !expiresAt.IsZero() {
		exp := expiresAt.UTC()
		resp.ExpiresAt = &exp
	}
	return resp
}
