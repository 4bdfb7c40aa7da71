package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/panel-dashboard/internal/domain"
)

// LoginRequest accepts either a panel username or an email.
type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

// Identifier returns whichever of username and email was sent.
func (r LoginRequest) Identifier() string {
	if u := strings.TrimSpace(r.Username); u != "" {
		return u
	}
	return strings.TrimSpace(r.Email)
}

type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Username  string       `json:"username"`
	User      UserResponse `json:"user"`
}

// MeResponse describes the caller.
type MeResponse struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	Websites []string    `json:"websites"`
}

// CreateUserRequest registers a local account.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN USER admin user"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
