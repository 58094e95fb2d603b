package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dteguh/gradeflow-api/internal/config"
	"github.com/dteguh/gradeflow-api/internal/handler"
	"github.com/dteguh/gradeflow-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler    *handler.CourseHandler
	SessionHandler   *handler.SessionHandler
	KeyGenHandler    *handler.KeyGenHandler
	AnalyticsHandler *handler.AnalyticsHandler
	HistoryHandler   *handler.HistoryHandler
	JWTMiddleware    fiber.Handler
	GradeLimiter     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(api.Group("/courses", jwtMiddleware))
	}

	if deps.SessionHandler != nil {
		// Grading fans out to the AI provider, so session routes carry a
		// per-caller rate limit on top of authentication.
		sessions := api.Group("/sessions", jwtMiddleware)
		if deps.GradeLimiter != nil {
			sessions.Use(deps.GradeLimiter)
		}
		deps.SessionHandler.Register(sessions)
	}

	if deps.KeyGenHandler != nil {
		deps.KeyGenHandler.Register(api.Group("/answer-keys", jwtMiddleware))
	}

	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(api.Group("/analytics", jwtMiddleware))
	}

	if deps.HistoryHandler != nil {
		deps.HistoryHandler.Register(api.Group("/history", jwtMiddleware))
	}
}
