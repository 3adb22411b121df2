// internals/middlewares/setup.go
package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	reqLogger "kampusku_backend/internals/middlewares/logger"
)

func SetupMiddlewares(app *fiber.App, log *zap.Logger) {
	app.Use(RecoveryMiddleware(log))
	app.Use(reqLogger.RequestLogger(log))
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
}
