package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/panel-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/panel-dashboard/internal/auth"
	"github.com/spec-kit/panel-dashboard/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Dashboard      *handlers.DashboardHandler
	Panel          *handlers.PanelHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")
	api.Get("/status", cfg.Panel.Status)
	api.Post("/auth/login", cfg.Auth.Login)
	api.Post("/test/auth", cfg.Auth.TestCredentials)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/auth/logout", cfg.Auth.Logout)
	protected.Get("/test/cyberpanel", cfg.Panel.TestConnection)
	protected.Get("/user/dashboard", cfg.Dashboard.UserDashboard)
	protected.Get("/cyberpanel/data", cfg.Panel.Overview)
	protected.Get("/cyberpanel/user-data", cfg.Panel.UserData)
	protected.Post("/cyberpanel/websites", cfg.Panel.CreateWebsite)
	protected.Delete("/cyberpanel/websites", cfg.Panel.DeleteWebsite)

	admin := protected.Group("", auth.RequireAdmin())
	admin.Get("/admin/stats", cfg.Admin.Stats)
	admin.Get("/admin/websites", cfg.Admin.ListWebsites)
	admin.Post("/admin/websites", cfg.Admin.CreateWebsite)
	admin.Put("/admin/websites/:id", cfg.Admin.UpdateWebsite)
	admin.Delete("/admin/websites/:id", cfg.Admin.DeleteWebsite)
	admin.Get("/admin/panel-users", cfg.Admin.PanelUsers)
	admin.Post("/admin/users", cfg.Admin.CreateUser)
	admin.Post("/system/update-stats", cfg.Admin.UpdateStats)
}
