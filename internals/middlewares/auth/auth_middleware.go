// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	helper "kampusku_backend/internals/helpers"
	"kampusku_backend/internals/helpers/logger"
)

type AuthJWTOpts struct {
	Secret              string
	AllowCookieFallback bool
	// IsRevoked reports whether a raw token was revoked. Optional.
	IsRevoked func(ctx context.Context, rawToken string) (bool, error)
	Log       *zap.Logger
}

// AuthJWT verifies an HMAC-signed bearer token and stores the user id and
// roles in Locals for the helper getters.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: secret is required")
	}
	log := logger.OrNop(o.Log)

	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c, o.AllowCookieFallback)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		if o.IsRevoked != nil {
			revoked, err := o.IsRevoked(c.UserContext(), raw)
			if err != nil {
				// revocation store down: accept, the signature still has to hold
				log.Warn("[AUTH] revocation check failed", zap.Error(err))
			} else if revoked {
				return fiber.NewError(fiber.StatusUnauthorized, "Token revoked")
			}
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			log.Debug("[AUTH] token rejected", zap.Error(err))
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or missing user id")
		}
		c.Locals(helper.LocUserID, userID)
		c.Locals(helper.LocRoles, extractRoles(claims))

		return c.Next()
	}
}
