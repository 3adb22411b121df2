package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kampusku_backend/internals/features/analytics/jobs/controller"
	"kampusku_backend/internals/middlewares"
	"kampusku_backend/internals/scheduler"
)

func JobsAdminRoutes(admin fiber.Router, runner *scheduler.Runner, log *zap.Logger) {
	ctrl := controller.NewJobsController(runner, log)

	g := admin.Group("/jobs")
	g.Get("/", ctrl.List)
	g.Post("/:name/run", middlewares.TriggerRateLimiter(), ctrl.Run)
}
