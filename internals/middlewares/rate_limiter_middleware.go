package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "kampusku_backend/internals/helpers"
)

func limitBy(limit int, window time.Duration, key func(*fiber.Ctx) string, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          limit,
		Expiration:   window,
		KeyGenerator: key,
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// GlobalRateLimiter: 100 requests per minute per IP.
func GlobalRateLimiter() fiber.Handler {
	return limitBy(100, time.Minute,
		func(c *fiber.Ctx) string { return c.IP() },
		"Too many requests. Please try again later.")
}

// TriggerRateLimiter guards endpoints that start heavy background work.
// Keyed per IP and path so triggering one job does not lock out another.
func TriggerRateLimiter() fiber.Handler {
	return limitBy(5, 10*time.Minute,
		func(c *fiber.Ctx) string { return c.IP() + ":" + c.Path() },
		"This job was triggered too often. Wait a few minutes.")
}
