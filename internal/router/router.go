package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/econova/econova-api/internal/config"
	"github.com/econova/econova-api/internal/handler"
	"github.com/econova/econova-api/internal/middleware"
	"github.com/econova/econova-api/internal/models"
	"github.com/econova/econova-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CatalogHandler      *handler.CatalogHandler
	UserHandler         *handler.UserHandler
	SubmissionHandler   *handler.SubmissionHandler
	AssignmentHandler   *handler.AssignmentHandler
	ProgressHandler     *handler.ProgressHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
	TeacherMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided middleware, or sensible fallbacks when nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	teacherMiddleware := deps.TeacherMiddleware
	if teacherMiddleware == nil {
		teacherMiddleware = middleware.RequireRole(models.RoleTeacher)
	}

	if deps.CatalogHandler != nil {
		catalogGroup := api.Group("/catalog", jwtMiddleware)
		deps.CatalogHandler.Register(catalogGroup)
	}

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterPublic(api.Group("/users", middleware.RateLimit("register", 10, time.Minute)))
		deps.UserHandler.Register(api.Group("/users", jwtMiddleware), teacherMiddleware)
	}

	if deps.SubmissionHandler != nil {
		submissionGroup := api.Group("/submissions", jwtMiddleware, middleware.RateLimit("submissions", 30, time.Minute))
		deps.SubmissionHandler.Register(submissionGroup)
	}

	if deps.AssignmentHandler != nil {
		assignmentGroup := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignmentGroup, teacherMiddleware)
	}

	if deps.ProgressHandler != nil {
		progressGroup := api.Group("/progress", jwtMiddleware)
		deps.ProgressHandler.Register(progressGroup)
	}

	if deps.NotificationHandler != nil {
		notificationGroup := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notificationGroup)
	}
}
