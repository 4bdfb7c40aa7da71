package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/panel-dashboard/internal/api/dto"
	"github.com/spec-kit/panel-dashboard/internal/auth"
	"github.com/spec-kit/panel-dashboard/internal/service"
	apperrors "github.com/spec-kit/panel-dashboard/pkg/util/errorutil"
)

func respond(c *fiber.Ctx, status int, data any, message string) error {
	body := fiber.Map{"success": true}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

// bind parses the JSON body into req and validates it.
func bind(c *fiber.Ctx, v *dto.Validator, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return v.Validate(req)
}

func principalOf(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func actorOf(p *auth.Principal) service.Actor {
	return service.Actor{UserID: p.UserID, Email: p.Email}
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
