package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/panel-dashboard/internal/api/dto"
	"github.com/spec-kit/panel-dashboard/internal/domain"
	"github.com/spec-kit/panel-dashboard/internal/service"
)

// AdminHandler serves the administrator endpoints.
type AdminHandler struct {
	dashboard *service.DashboardService
	websites  *service.WebsiteService
	auth      *service.AuthService
	usage     *service.UsageService
	directory service.UserDirectory
	validator *dto.Validator
}

// AdminDependencies bundles the services behind the admin endpoints.
type AdminDependencies struct {
	Dashboard *service.DashboardService
	Websites  *service.WebsiteService
	Auth      *service.AuthService
	Usage     *service.UsageService
	Directory service.UserDirectory
	Validator *dto.Validator
}

func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{
		dashboard: deps.Dashboard,
		websites:  deps.Websites,
		auth:      deps.Auth,
		usage:     deps.Usage,
		directory: deps.Directory,
		validator: deps.Validator,
	}
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboard.AdminStats(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewAdminStatsResponse(stats.TotalUsers, stats.Totals, stats.RecentActivities), "")
}

// ListWebsites handles GET /api/admin/websites.
func (h *AdminHandler) ListWebsites(c *fiber.Ctx) error {
	websites, err := h.websites.List(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewWebsiteList(websites), "")
}

// CreateWebsite handles POST /api/admin/websites.
func (h *AdminHandler) CreateWebsite(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.CreateWebsiteRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	website, err := h.websites.Create(c.UserContext(), actorOf(principal), service.CreateWebsiteInput{
		Domain:     req.Domain,
		OwnerEmail: req.Owner,
		Plan:       req.Plan,
		PHPVersion: req.PHPVersion,
		SSLEnabled: req.SSLEnabled,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewCreatedWebsiteResponse(website), "Website created successfully")
}

// UpdateWebsite handles PUT /api/admin/websites/:id.
func (h *AdminHandler) UpdateWebsite(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.UpdateWebsiteRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	website, err := h.websites.Update(c.UserContext(), actorOf(principal), c.Params("id"), service.UpdateWebsiteInput{
		Status:  req.Status,
		Package: req.Package,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewWebsiteResponse(*website), "Website updated successfully")
}

// DeleteWebsite handles DELETE /api/admin/websites/:id.
func (h *AdminHandler) DeleteWebsite(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	if err := h.websites.Delete(c.UserContext(), actorOf(principal), c.Params("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Website deleted successfully")
}

// PanelUsers handles GET /api/admin/panel-users.
func (h *AdminHandler) PanelUsers(c *fiber.Ctx) error {
	return respond(c, http.StatusOK, h.directory.ListUsers(c.UserContext()), "")
}

// CreateUser handles POST /api/admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	user, err := h.auth.CreateUser(c.UserContext(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(upper(req.Role)),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewUserResponse(user), "User created successfully")
}

// UpdateStats handles POST /api/system/update-stats.
func (h *AdminHandler) UpdateStats(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	report, err := h.usage.Sync(c.UserContext(), actorOf(principal))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, report, "Website statistics updated")
}
