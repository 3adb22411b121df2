package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocUserID = "user_id"
	LocRoles  = "roles"
)

// GetUserIDFromToken reads c.Locals("user_id") set by the JWT middleware.
// 401 when missing, 400 when it is not a uuid.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals(LocUserID)
	if v == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User is not logged in")
	}

	switch t := v.(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User is not logged in")
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User is not logged in")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid user id in token")
		}
		return id, nil
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid user id in token")
	}
}

// GetRolesFromToken returns the lower-cased roles stored by the JWT middleware.
func GetRolesFromToken(c *fiber.Ctx) []string {
	switch t := c.Locals(LocRoles).(type) {
	case []string:
		return t
	default:
		return nil
	}
}

// ParseUUIDParam parses a path param, answering 400 on bad input.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" is not a valid uuid")
	}
	return id, nil
}
