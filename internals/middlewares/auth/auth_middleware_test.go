package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "kampusku_backend/internals/helpers"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func newApp(opts AuthJWTOpts, extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{AuthJWT(opts)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		id, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return err
		}
		roles := helper.GetRolesFromToken(c)
		return c.JSON(fiber.Map{"id": id.String(), "roles": roles})
	})
	app.Get("/me", handlers...)
	return app
}

func do(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAuthJWT(t *testing.T) {
	userID := uuid.New()
	app := newApp(AuthJWTOpts{Secret: testSecret})

	t.Run("valid token", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"sub":   userID.String(),
			"role":  "Dean",
			"roles": []string{"professor", "dean"},
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		code, body := do(t, app, tok)
		assert.Equal(t, fiber.StatusOK, code)
		assert.Contains(t, body, userID.String())
		assert.Contains(t, body, `"roles":["dean","professor"]`)
	})

	t.Run("missing header", func(t *testing.T) {
		code, _ := do(t, app, "")
		assert.Equal(t, fiber.StatusUnauthorized, code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"id": userID.String()})
		code, _ := do(t, app, tok)
		assert.Equal(t, fiber.StatusUnauthorized, code)
	})

	t.Run("expired", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"id":  userID.String(),
			"exp": time.Now().Add(-time.Minute).Unix(),
		})
		code, _ := do(t, app, tok)
		assert.Equal(t, fiber.StatusUnauthorized, code)
	})

	t.Run("no user id", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"role": "admin"})
		code, _ := do(t, app, tok)
		assert.Equal(t, fiber.StatusUnauthorized, code)
	})

	t.Run("unsigned token", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"id": userID.String()})
		code, _ := do(t, app, tok)
		assert.Equal(t, fiber.StatusUnauthorized, code)
	})
}

func TestAuthJWT_Revocation(t *testing.T) {
	userID := uuid.New()
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"id": userID.String()})

	revoked := newApp(AuthJWTOpts{
		Secret:    testSecret,
		IsRevoked: func(context.Context, string) (bool, error) { return true, nil },
	})
	code, _ := do(t, revoked, tok)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	storeDown := newApp(AuthJWTOpts{
		Secret:    testSecret,
		IsRevoked: func(context.Context, string) (bool, error) { return false, errors.New("redis: connection refused") },
	})
	code, _ = do(t, storeDown, tok)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestAuthJWT_CookieFallback(t *testing.T) {
	userID := uuid.New()
	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": userID.String()})
	app := newApp(AuthJWTOpts{Secret: testSecret, AllowCookieFallback: true})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: tok})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestStaffOnly(t *testing.T) {
	app := newApp(AuthJWTOpts{Secret: testSecret}, StaffOnly())

	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   int
	}{
		{name: "secretary", claims: jwt.MapClaims{"role": "secretary"}, want: fiber.StatusOK},
		{name: "admin in list", claims: jwt.MapClaims{"roles": []string{"student", "ADMIN"}}, want: fiber.StatusOK},
		{name: "student", claims: jwt.MapClaims{"role": "student"}, want: fiber.StatusForbidden},
		{name: "no roles", claims: jwt.MapClaims{}, want: fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.claims["id"] = uuid.NewString()
			tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), tt.claims)
			code, _ := do(t, app, tok)
			assert.Equal(t, tt.want, code)
		})
	}
}
