package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staffing-service/internal/api/http/handlers"
	"github.com/spec-kit/staffing-service/internal/auth"
	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Appointments   *handlers.AppointmentsHandler
	Employees      *handlers.EmployeesHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/reset/request", cfg.Auth.RequestReset)
	authGroup.Post("/reset/confirm", cfg.Auth.ConfirmReset)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protectedAuth.Post("/logout", cfg.Auth.Logout)
	protectedAuth.Post("/secret/change", cfg.Auth.ChangeSecret)

	appointments := app.Group("/appointments", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	appointments.Get("/future/:ownerId", cfg.Appointments.Future)
	appointments.Get("/past/:ownerId", cfg.Appointments.Past)
	appointments.Get("/", cfg.Appointments.List)
	appointments.Post("/", cfg.Appointments.Create)
	appointments.Get("/:id", cfg.Appointments.Get)
	appointments.Put("/:id", cfg.Appointments.Update)
	appointments.Delete("/:id", cfg.Appointments.Delete)

	employees := app.Group("/employees", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	employees.Get("/", cfg.Employees.List)
	employees.Get("/:id", cfg.Employees.Get)
	employees.Post("/", auth.RequireRole(domain.RoleCompany), cfg.Employees.Create)
}
