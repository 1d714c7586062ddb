package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRefMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RequestRefMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(RequestRef(c.UserContext()))
	})

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "generated", header: ""},
		{name: "propagated", header: "abc-123", keep: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestRefHeader, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			body, _ := io.ReadAll(resp.Body)
			ref := resp.Header.Get(RequestRefHeader)
			assert.NotEmpty(t, ref)
			assert.Equal(t, ref, string(body))
			if tt.keep {
				assert.Equal(t, tt.header, ref)
			}
		})
	}
}

func TestMetricsMiddlewareWithoutMetrics(t *testing.T) {
	app := fiber.New()
	app.Use(MetricsMiddleware(nil))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
