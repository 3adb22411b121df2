package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	helper "kampusku_backend/internals/helpers"
)

// Roles carried in tokens.
const (
	RoleAdmin     = "admin"
	RoleSecretary = "secretary"
	RoleDean      = "dean"
	RoleProfessor = "professor"
	RoleStudent   = "student"
)

// OnlyRoles passes when the token holds at least one of roles.
func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = struct{}{}
	}
	if customMessage == "" {
		customMessage = "Forbidden: you are not authorized to access this resource"
	}

	return func(c *fiber.Ctx) error {
		held := helper.GetRolesFromToken(c)
		if len(held) == 0 {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		for _, r := range held {
			if _, ok := allowed[r]; ok {
				return c.Next()
			}
		}
		return helper.JsonError(c, fiber.StatusForbidden, customMessage)
	}
}

// StaffOnly: administration, secretariat and deans.
func StaffOnly() fiber.Handler {
	return OnlyRoles("Only staff can access analytics", RoleAdmin, RoleSecretary, RoleDean)
}
