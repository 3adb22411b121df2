package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kampusku_backend/internals/features/analytics/snapshots/controller"
	"kampusku_backend/internals/features/analytics/snapshots/service"
)

func SnapshotAdminRoutes(admin fiber.Router, svc *service.SnapshotService, log *zap.Logger) {
	ctrl := controller.NewSnapshotController(svc, log)

	g := admin.Group("/snapshots")
	g.Get("/daily", ctrl.ListDaily)
	g.Get("/grades/:student_id", ctrl.GradesByStudent)
	g.Get("/attendance/:student_id", ctrl.AttendanceByStudent)
}
