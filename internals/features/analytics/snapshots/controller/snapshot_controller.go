package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kampusku_backend/internals/features/analytics/snapshots/dto"
	"kampusku_backend/internals/features/analytics/snapshots/service"
	helper "kampusku_backend/internals/helpers"
)

type SnapshotController struct {
	Svc       *service.SnapshotService
	Validator *validator.Validate
	Log       *zap.Logger
}

func NewSnapshotController(svc *service.SnapshotService, log *zap.Logger) *SnapshotController {
	return &SnapshotController{Svc: svc, Validator: validator.New(), Log: log}
}

// GET /api/a/snapshots/daily
func (ctrl *SnapshotController) ListDaily(c *fiber.Ctx) error {
	var q dto.DailySnapshotQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := ctrl.Validator.Struct(q); err != nil {
		return helper.ValidationError(c, err)
	}

	p := helper.ResolvePaging(c, 30, 100)
	rows, total, err := ctrl.Svc.ListDaily(c.UserContext(), q.ToFilter(p.Limit, p.Offset))
	if err != nil {
		ctrl.Log.Error("[SNAPSHOT] list daily failed", zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load snapshots")
	}
	return helper.JsonList(c, "ok", dto.ToDailySnapshotResponseList(rows),
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage, len(rows)))
}

// GET /api/a/snapshots/grades/:student_id
func (ctrl *SnapshotController) GradesByStudent(c *fiber.Ctx) error {
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return err
	}
	rows, err := ctrl.Svc.GradeSnapshotsFor(c.UserContext(), studentID)
	if err != nil {
		ctrl.Log.Error("[SNAPSHOT] grade snapshots failed", zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load grade snapshots")
	}
	return helper.JsonOK(c, "ok", rows)
}

// GET /api/a/snapshots/attendance/:student_id
func (ctrl *SnapshotController) AttendanceByStudent(c *fiber.Ctx) error {
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return err
	}
	rows, err := ctrl.Svc.AttendanceStatsFor(c.UserContext(), studentID)
	if err != nil {
		ctrl.Log.Error("[SNAPSHOT] attendance stats failed", zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load attendance stats")
	}
	return helper.JsonOK(c, "ok", rows)
}
