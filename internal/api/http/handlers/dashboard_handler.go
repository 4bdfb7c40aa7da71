package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/panel-dashboard/internal/api/dto"
	"github.com/spec-kit/panel-dashboard/internal/service"
)

// DashboardHandler serves the signed-in user's dashboard.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// UserDashboard handles GET /api/user/dashboard.
func (h *DashboardHandler) UserDashboard(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	view, err := h.dashboard.UserDashboard(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewUserDashboardResponse(view.Totals, view.Websites, view.Activities), "")
}
