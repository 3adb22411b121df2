package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kampusku_backend/internals/features/analytics/alerts/dto"
	"kampusku_backend/internals/features/analytics/alerts/service"
	riskModel "kampusku_backend/internals/features/analytics/risk/model"
	helper "kampusku_backend/internals/helpers"
)

type RiskAlertController struct {
	Svc       *service.AlertService
	Validator *validator.Validate
	Log       *zap.Logger
}

func NewRiskAlertController(svc *service.AlertService, log *zap.Logger) *RiskAlertController {
	return &RiskAlertController{Svc: svc, Validator: validator.New(), Log: log}
}

// GET /api/a/risk-alerts
func (ctrl *RiskAlertController) List(c *fiber.Ctx) error {
	var q dto.RiskAlertListQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := ctrl.Validator.Struct(q); err != nil {
		return helper.ValidationError(c, err)
	}

	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctrl.Svc.List(c.UserContext(), q.ToFilter(p.Limit, p.Offset))
	if err != nil {
		ctrl.Log.Error("[ALERT] list failed", zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load risk alerts")
	}
	return helper.JsonList(c, "ok", dto.ToRiskAlertResponseList(rows),
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage, len(rows)))
}

// GET /api/a/risk-alerts/:id
func (ctrl *RiskAlertController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	row, err := ctrl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return ctrl.fail(c, err, "Failed to load risk alert")
	}
	return helper.JsonOK(c, "ok", dto.ToRiskAlertResponse(row))
}

// POST /api/a/risk-alerts
func (ctrl *RiskAlertController) Create(c *fiber.Ctx) error {
	var req dto.CreateRiskAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctrl.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	row, err := ctrl.Svc.CreateAlert(c.UserContext(), service.CreateAlertInput{
		StudentID: uuid.MustParse(req.StudentID),
		Level:     riskModel.RiskLevel(req.Level),
		Type:      req.Type,
		Message:   req.Message,
	})
	if err != nil {
		if errors.Is(err, service.ErrDispatchFailed) && row != nil {
			return helper.JsonMultiStatus(c, "Alert created but some stakeholders could not be notified", dto.ToRiskAlertResponse(row))
		}
		return ctrl.fail(c, err, "Failed to create risk alert")
	}
	return helper.JsonCreated(c, "Risk alert created", dto.ToRiskAlertResponse(row))
}

// POST /api/a/risk-alerts/check/:student_id
func (ctrl *RiskAlertController) Check(c *fiber.Ctx) error {
	studentID, err := helper.ParseUUIDParam(c, "student_id")
	if err != nil {
		return err
	}

	rows, err := ctrl.Svc.CheckAndCreateAlerts(c.UserContext(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrDispatchFailed) {
			return helper.JsonMultiStatus(c, "Alerts created but some stakeholders could not be notified", dto.ToRiskAlertResponseList(rows))
		}
		return ctrl.fail(c, err, "Failed to check risk alerts")
	}
	return helper.JsonOK(c, "Alert check finished", dto.ToRiskAlertResponseList(rows))
}

// POST /api/a/risk-alerts/:id/acknowledge
func (ctrl *RiskAlertController) Acknowledge(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	row, err := ctrl.Svc.Acknowledge(c.UserContext(), id, userID)
	if err != nil {
		return ctrl.fail(c, err, "Failed to acknowledge risk alert")
	}
	return helper.JsonUpdated(c, "Risk alert acknowledged", dto.ToRiskAlertResponse(row))
}

// PATCH /api/a/risk-alerts/:id/intervention
func (ctrl *RiskAlertController) TrackIntervention(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.TrackInterventionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	row, err := ctrl.Svc.TrackIntervention(c.UserContext(), id, req.Notes, req.Status)
	if err != nil {
		return ctrl.fail(c, err, "Failed to update intervention")
	}
	return helper.JsonUpdated(c, "Intervention updated", dto.ToRiskAlertResponse(row))
}

func (ctrl *RiskAlertController) fail(c *fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, service.ErrAlertNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Risk alert not found")
	case errors.Is(err, service.ErrStudentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Student not found")
	}
	ctrl.Log.Error("[ALERT] "+msg, zap.Error(err))
	return helper.JsonError(c, fiber.StatusInternalServerError, msg)
}
