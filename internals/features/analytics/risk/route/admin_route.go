package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kampusku_backend/internals/features/analytics/risk/controller"
	"kampusku_backend/internals/features/analytics/risk/service"
	"kampusku_backend/internals/middlewares"
)

func RiskScoreAdminRoutes(admin fiber.Router, svc *service.RiskScoringService, log *zap.Logger) {
	ctrl := controller.NewRiskScoreController(svc, log)

	g := admin.Group("/risk-scores")
	g.Get("/", ctrl.List)
	g.Get("/summary", ctrl.Summary)
	g.Post("/recalculate-all", middlewares.TriggerRateLimiter(), ctrl.RecalculateAll)
	g.Get("/:student_id", ctrl.GetByStudent)
	g.Post("/:student_id/recalculate", ctrl.Recalculate)
}
