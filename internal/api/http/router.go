package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/sro-service/internal/api/http/handlers"
	"github.com/spec-kit/sro-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Callouts  *handlers.CalloutsHandler
	SROs      *handlers.SROsHandler
	Schedules *handlers.SchedulesHandler
	Reference *handlers.ReferenceHandler
	Metrics   *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	callouts := app.Group("/callouts")
	callouts.Post("/", cfg.Callouts.Create)
	callouts.Get("/", cfg.Callouts.List)
	callouts.Get("/:id", cfg.Callouts.Get)
	callouts.Patch("/:id", cfg.Callouts.Patch)
	callouts.Delete("/:id", cfg.Callouts.Delete)
	callouts.Post("/:id/generate-sro", cfg.Callouts.GenerateSRO)

	sros := app.Group("/sros")
	sros.Get("/", cfg.SROs.List)
	sros.Get("/:id", cfg.SROs.Get)
	sros.Post("/:id/approve", cfg.SROs.Approve)

	schedules := app.Group("/schedules")
	schedules.Get("/", cfg.Schedules.List)
	schedules.Get("/:id", cfg.Schedules.Get)
	schedules.Patch("/:id", cfg.Schedules.Patch)

	app.Get("/calendar/:year/:month", cfg.Callouts.Calendar)

	reference := app.Group("/reference")
	reference.Get("/customers", cfg.Reference.ListCustomers)
	reference.Get("/rigs", cfg.Reference.ListRigs)
	reference.Get("/wells", cfg.Reference.ListWells)
	reference.Post("/wells", cfg.Reference.CreateWell)
	reference.Get("/equipment-types", cfg.Reference.ListEquipmentTypes)
}
