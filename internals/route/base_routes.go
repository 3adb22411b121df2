package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	database "kampusku_backend/internals/databases"
	"kampusku_backend/internals/metrics"
)

func BaseRoutes(app *fiber.App, d Deps) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Kampusku analytics is running 🚀")
	})

	app.Get("/metrics", metrics.Handler())

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK
		if err := database.Ping(ctx, d.DB); err != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		redisStatus := "Disabled"
		if d.Redis != nil {
			redisStatus = "Connected"
			if err := d.Redis.Ping(ctx).Err(); err != nil {
				// notifications still persist without redis
				redisStatus = "Unavailable"
			}
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"redis":          redisStatus,
			"jobs":           d.Runner.Status(),
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    d.Config.AppEnv,
		})
	})
}
