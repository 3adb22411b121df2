package helper

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaging(t *testing.T) {
	tests := []struct {
		query string
		want  Paging
	}{
		{"", Paging{Page: 1, PerPage: 20, Offset: 0, Limit: 20}},
		{"?page=3&per_page=10", Paging{Page: 3, PerPage: 10, Offset: 20, Limit: 10}},
		{"?page=2&limit=15", Paging{Page: 2, PerPage: 15, Offset: 15, Limit: 15}},
		{"?page=0&per_page=500", Paging{Page: 1, PerPage: 100, Offset: 0, Limit: 100}},
		{"?page=abc&per_page=-4", Paging{Page: 1, PerPage: 20, Offset: 0, Limit: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got Paging
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				got = ResolvePaging(c, 20, 100)
				return nil
			})
			_, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPaginationFromPage(t *testing.T) {
	p := BuildPaginationFromPage(45, 2, 20, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := BuildPaginationFromPage(0, 1, 20, 0)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestStatusToErrorCode(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", statusToErrorCode(fiber.StatusNotFound))
	assert.Equal(t, "CONFLICT", statusToErrorCode(fiber.StatusConflict))
	assert.Equal(t, "PARTIAL_FAILURE", statusToErrorCode(fiber.StatusMultiStatus))
	assert.Equal(t, "INTERNAL_ERROR", statusToErrorCode(fiber.StatusServiceUnavailable))
	assert.Equal(t, "ERROR", statusToErrorCode(fiber.StatusTeapot))
}

func TestJsonMultiStatus(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		return JsonMultiStatus(c, "Alert created but some stakeholders could not be notified", fiber.Map{"id": "a1"})
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusMultiStatus, resp.StatusCode)

	var body struct {
		Success   bool           `json:"success"`
		Message   string         `json:"message"`
		ErrorCode string         `json:"error_code"`
		Data      map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "PARTIAL_FAILURE", body.ErrorCode)
	assert.Equal(t, "a1", body.Data["id"])
}
