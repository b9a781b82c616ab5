package controller

import (
	"net/http"

	"edu-assistant-be/internal/pkg/serverutils"
	"edu-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type ISystemController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Health(ctx *fiber.Ctx) error
	JobStats(ctx *fiber.Ctx) error
}

type systemController struct {
	healthService service.IHealthService
}

func NewSystemController(healthService service.IHealthService) ISystemController {
	return &systemController{
		healthService: healthService,
	}
}

func (c *systemController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Get("/health", c.Health)

	h := r.Group("/jobs/v1")
	h.Use(auth)
	h.Get("stats", c.JobStats)
}

// RegisterMetrics mounts the prometheus handler outside the /api group
func RegisterMetrics(app *fiber.App, handler http.Handler) {
	app.Get("/metrics", adaptor.HTTPHandler(handler))
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	res := c.healthService.Check(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Health "+res.Status, res))
}

func (c *systemController) JobStats(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get job stats", c.healthService.JobStats()))
}
