package controller

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kampusku_backend/internals/features/analytics/risk/dto"
	"kampusku_backend/internals/features/analytics/risk/service"
	helper "kampusku_backend/internals/helpers"
)

type RiskScoreController struct {
	Svc       *service.RiskScoringService
	Validator *validator.Validate
	Log       *zap.Logger
}

func NewRiskScoreController(svc *service.RiskScoringService, log *zap.Logger) *RiskScoreController {
	return &RiskScoreController{Svc: svc, Validator: validator.New(), Log: log}
}

// GET /api/a/risk-scores
func (ctrl *RiskScoreController) List(c *fiber.Ctx) error {
	var q dto.RiskScoreListQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := ctrl.Validator.Struct(q); err != nil {
		return helper.ValidationError(c, err)
	}

	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctrl.Svc.List(c.UserContext(), q.ToFilter(p.Limit, p.Offset))
	if err != nil {
		ctrl.Log.Error("[RISK] list scores failed", zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load risk scores")
	}

	return helper.JsonList(c, "ok", dto.ToRiskScoreResponseList(rows),
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage, len(rows)))
}

// GET /api/a/risk-scores/summary
func (ctrl *RiskScoreController) Summary(c *fiber.Ctx) error {
	counts, err := ctrl.Svc.LevelSummary(c.UserContext())
	if err != nil {
		ctrl.Log.Error("[RISK] summary failed", zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load risk summary")
	}
	return helper.JsonOK(c, "ok", dto.ToRiskLevelSummary(counts))
}

// GET /api/a/risk-scores/:student_id
func (ctrl *RiskScoreController) GetByStudent(c *fiber.Ctx) error {
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return err
	}

	row, err := ctrl.Svc.GetByStudent(c.UserContext(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrRiskScoreNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Risk score not calculated yet")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load risk score")
	}
	return helper.JsonOK(c, "ok", dto.ToRiskScoreResponse(row))
}

// POST /api/a/risk-scores/:student_id/recalculate
func (ctrl *RiskScoreController) Recalculate(c *fiber.Ctx) error {
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return err
	}

	row, err := ctrl.Svc.CalculateForStudent(c.UserContext(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			ctrl.Log.Warn("[RISK] recalculate: student not found", zap.String("student_id", studentID.String()))
			return helper.JsonError(c, fiber.StatusNotFound, "Student not found")
		}
		ctrl.Log.Error("[RISK] recalculate failed", zap.String("student_id", studentID.String()), zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to calculate risk score")
	}
	return helper.JsonUpdated(c, "Risk score recalculated", dto.ToRiskScoreResponse(row))
}

// POST /api/a/risk-scores/recalculate-all
// Runs detached from the request; progress is reported in the logs.
func (ctrl *RiskScoreController) RecalculateAll(c *fiber.Ctx) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		if _, err := ctrl.Svc.RecalculateAll(ctx); err != nil {
			ctrl.Log.Error("[RISK] manual bulk recalculation aborted", zap.Error(err))
		}
	}()
	return helper.JsonAccepted(c, "Bulk risk recalculation started", nil)
}
