package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kampusku_backend/internals/features/analytics/alerts/controller"
	"kampusku_backend/internals/features/analytics/alerts/service"
)

func RiskAlertAdminRoutes(admin fiber.Router, svc *service.AlertService, log *zap.Logger) {
	ctrl := controller.NewRiskAlertController(svc, log)

	g := admin.Group("/risk-alerts")
	g.Get("/", ctrl.List)
	g.Post("/", ctrl.Create)
	g.Post("/check/:student_id", ctrl.Check)
	g.Get("/:id", ctrl.Get)
	g.Post("/:id/acknowledge", ctrl.Acknowledge)
	g.Patch("/:id/intervention", ctrl.TrackIntervention)
}
