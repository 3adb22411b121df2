package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kampusku_backend/internals/features/home/notifications/controller"
	"kampusku_backend/internals/features/home/notifications/service"
)

func NotificationUserRoutes(user fiber.Router, svc *service.NotificationService, log *zap.Logger) {
	ctrl := controller.NewNotificationController(svc, log)

	notification := user.Group("/notifications")
	notification.Get("/", ctrl.GetMyNotifications)
	notification.Post("/:id/read", ctrl.MarkAsRead)
}
