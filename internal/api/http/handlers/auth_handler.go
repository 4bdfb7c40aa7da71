package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/panel-dashboard/internal/api/dto"
	"github.com/spec-kit/panel-dashboard/internal/service"
)

// AuthHandler exposes session endpoints.
type AuthHandler struct {
	auth      *service.AuthService
	validator *dto.Validator
}

func NewAuthHandler(authService *service.AuthService, validator *dto.Validator) *AuthHandler {
	return &AuthHandler{auth: authService, validator: validator}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Identifier(), req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.Session.ExpiresAt,
		Username:  result.Session.Username,
		User:      dto.NewUserResponse(result.User),
	}, "")
}

// TestCredentials handles POST /api/test/auth. It never issues a session.
func (h *AuthHandler) TestCredentials(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	if err := h.auth.CheckCredentials(c.UserContext(), req.Identifier(), req.Password); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Authentication successful")
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	profile := h.auth.Profile(c.UserContext(), principal)
	return respond(c, http.StatusOK, dto.MeResponse{
		ID:       profile.UserID,
		Username: profile.Username,
		Email:    profile.Email,
		Role:     profile.Role,
		Websites: profile.Websites,
	}, "")
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), principal.SessionID, principal.ExpiresAt); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Logged out")
}
