// internals/middlewares/auth/claim_utils.go
package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func extractBearerToken(c *fiber.Ctx, allowCookie bool) (string, error) {
	authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authz == "" && allowCookie {
		if tok := c.Cookies("access_token"); tok != "" {
			authz = "Bearer " + tok
		}
	}
	if authz == "" {
		return "", errors.New("unauthorized - no token provided")
	}

	fields := strings.Fields(authz)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", errors.New("unauthorized - invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", errors.New("unauthorized - empty token")
	}
	return tok, nil
}

// extractUserID prefers "id", then "sub", then "user_id".
func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, key := range []string{"id", "sub", "user_id"} {
		if s := strClaim(claims, key); s != "" {
			return uuid.Parse(s)
		}
	}
	return uuid.Nil, errors.New("no user id claim")
}

// extractRoles merges the single "role" claim with the "roles" list, lower-cased.
func extractRoles(claims jwt.MapClaims) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(r string) {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			return
		}
		if _, ok := seen[r]; ok {
			return
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}

	add(strClaim(claims, "role"))
	for _, r := range toStringSlice(claims["roles"]) {
		add(r)
	}
	return out
}

func strClaim(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func toStringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
