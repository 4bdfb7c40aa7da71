package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/panel-dashboard/internal/api/dto"
	"github.com/spec-kit/panel-dashboard/internal/service"
	apperrors "github.com/spec-kit/panel-dashboard/pkg/util/errorutil"
)

// PanelHandler exposes live panel views and direct provisioning.
type PanelHandler struct {
	dashboard *service.DashboardService
	provision *service.ProvisionService
	status    *service.StatusService
	validator *dto.Validator
}

func NewPanelHandler(dashboard *service.DashboardService, provision *service.ProvisionService, status *service.StatusService, validator *dto.Validator) *PanelHandler {
	return &PanelHandler{dashboard: dashboard, provision: provision, status: status, validator: validator}
}

// Status handles GET /api/status.
func (h *PanelHandler) Status(c *fiber.Ctx) error {
	return c.JSON(dto.NewStatusResponse(h.status.Status(c.UserContext())))
}

// TestConnection handles GET /api/test/cyberpanel.
func (h *PanelHandler) TestConnection(c *fiber.Ctx) error {
	result := h.status.VerifyPanel(c.UserContext())
	if !result.Succeeded {
		code := string(result.Code)
		if code == "" {
			code = "PANEL_ERROR"
		}
		return apperrors.NewDomainError(code, "CyberPanel authentication failed", http.StatusUnauthorized,
			map[string]any{"details": result.ErrorMessage})
	}
	return respond(c, http.StatusOK, result, "CyberPanel authentication successful")
}

// Overview handles GET /api/cyberpanel/data.
func (h *PanelHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.dashboard.PanelOverview(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewPanelOverviewResponse(overview), "")
}

// UserData handles GET /api/cyberpanel/user-data.
func (h *PanelHandler) UserData(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	data, err := h.dashboard.UserPanelData(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewUserPanelDataResponse(data), "")
}

// CreateWebsite handles POST /api/cyberpanel/websites.
func (h *PanelHandler) CreateWebsite(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.ProvisionRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	result, err := h.provision.Provision(c.UserContext(), actorOf(principal), req.ToInput())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result, "Website created successfully")
}

// DeleteWebsite handles DELETE /api/cyberpanel/websites?domain=.
func (h *PanelHandler) DeleteWebsite(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	domainName := c.Query("domain")
	result, err := h.provision.Deprovision(c.UserContext(), actorOf(principal), domainName)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result, "Website "+domainName+" deleted successfully")
}
