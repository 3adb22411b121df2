package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns handler panics into 500s and logs the panic value.
func RecoveryMiddleware(log *zap.Logger) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			log.Error("[PANIC] recovered",
				zap.Any("panic", e),
				zap.String("method", c.Method()),
				zap.String("path", c.OriginalURL()),
				zap.Stack("stack"),
			)
		},
	})
}
