package logger

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"
	"go.uber.org/zap"
)

// RequestLogger tags each request with an X-Request-ID and writes one
// access line per request through zap.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = utils.UUID()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals("reqid", id)

		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []zap.Field{
			zap.String("id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", status),
			zap.Duration("dur", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if status >= 500 {
			log.Error("[REQ]", fields...)
		} else {
			log.Info("[REQ]", fields...)
		}
		return err
	}
}
