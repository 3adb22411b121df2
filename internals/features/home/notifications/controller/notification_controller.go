package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kampusku_backend/internals/features/home/notifications/dto"
	"kampusku_backend/internals/features/home/notifications/service"
	helper "kampusku_backend/internals/helpers"
)

type NotificationController struct {
	Svc *service.NotificationService
	Log *zap.Logger
}

func NewNotificationController(svc *service.NotificationService, log *zap.Logger) *NotificationController {
	return &NotificationController{Svc: svc, Log: log}
}

// 🟢 GET /api/u/notifications?unread=true  (+ pagination)
func (ctrl *NotificationController) GetMyNotifications(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	p := helper.ResolvePaging(c, 10, 100)
	rows, total, err := ctrl.Svc.ListForUser(c.UserContext(), userID, c.QueryBool("unread", false), p.Limit, p.Offset)
	if err != nil {
		ctrl.Log.Error("[NOTIF] list failed", zap.String("user_id", userID.String()), zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load notifications")
	}

	return helper.JsonList(c, "ok", dto.ToNotificationResponseList(rows),
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage, len(rows)))
}

// 🟢 POST /api/u/notifications/:id/read
func (ctrl *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := ctrl.Svc.MarkAsRead(c.UserContext(), userID, id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Notification not found")
		}
		ctrl.Log.Error("[NOTIF] mark as read failed", zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update notification")
	}
	return helper.JsonUpdated(c, "Notification marked as read", fiber.Map{"user_notification_id": id})
}
