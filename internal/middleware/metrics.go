package middleware

import (
	"time"

	"go-admin/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records method, matched route and status for every request.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.RecordHTTPRequest(c.UserContext(), c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
