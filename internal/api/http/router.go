package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/linkshelf/bookmark-service/internal/api/http/handlers"
	"github.com/linkshelf/bookmark-service/internal/auth"
	"github.com/linkshelf/bookmark-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	// RootPath prefixes the API routes; empty mounts them at the server root.
	RootPath       string
	MetricsPath    string
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Bookmarks      *handlers.BookmarksHandler
	AuthMiddleware *auth.AuthMiddleware
	// Metrics is optional; nil disables the scrape endpoint.
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group(cfg.RootPath)

	users := api.Group("/user")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)

	protectedUsers := users.Group("", cfg.AuthMiddleware.Handle)
	protectedUsers.Post("/logout", cfg.Users.Logout)
	protectedUsers.Get("/me", cfg.Users.Me)
	protectedUsers.Put("/password", cfg.Users.ChangePassword)
	protectedUsers.Delete("/:name", cfg.Users.Delete)

	bookmarks := api.Group("/bookmark", cfg.AuthMiddleware.Handle)
	bookmarks.Get("", cfg.Bookmarks.List)
	bookmarks.Post("", cfg.Bookmarks.Create)
	bookmarks.Get("/public", cfg.Bookmarks.Public)
	bookmarks.Put("/:name", cfg.Bookmarks.Update)
	bookmarks.Post("/:name", cfg.Bookmarks.Update)
	bookmarks.Delete("/:name", cfg.Bookmarks.Delete)
}
