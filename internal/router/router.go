package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vittoclass/libel-IA/internal/config"
	"github.com/vittoclass/libel-IA/internal/handler"
	"github.com/vittoclass/libel-IA/internal/middleware"
	"github.com/vittoclass/libel-IA/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluationHandler  *handler.EvaluationHandler
	OCRHandler         *handler.OCRHandler
	MemoryHandler      *handler.MemoryHandler
	InstructionHandler *handler.InstructionHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// The external services behind these endpoints are slow and billed
	// per call, so they share a dedicated rate budget.
	expensive := app.Group("", middleware.RateLimit("evaluaciones", cfg.RateLimitMax, time.Minute))

	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(expensive)
	}

	if deps.OCRHandler != nil {
		deps.OCRHandler.Register(expensive)
	}

	if deps.MemoryHandler != nil {
		deps.MemoryHandler.Register(app)
	}

	if deps.InstructionHandler != nil {
		deps.InstructionHandler.Register(app)
	}
}
