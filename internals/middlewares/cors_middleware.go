// internals/middlewares/cors_middleware.go
package middlewares

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

var defaultOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// CorsMiddleware allows CORS_ORIGINS (comma separated) or the local dev origins.
func CorsMiddleware() fiber.Handler {
	origins := defaultOrigins
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		origins = strings.Split(v, ",")
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ", "),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowCredentials: true,
	})
}
