package middleware

import (
	"context"

	common_models "go-admin/internal/common/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const RequestRefHeader = "X-Request-Ref"

// RequestRefMiddleware reuses the caller's X-Request-Ref or generates one,
// echoes it back and stores it in the user context.
func RequestRefMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ref := c.Get(RequestRefHeader)
		if ref == "" || len(ref) > 64 {
			ref = uuid.NewString()
		}
		c.Set(RequestRefHeader, ref)

		ctx := context.WithValue(c.UserContext(), common_models.RequestRefKey, ref)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequestRef returns the reference stored by RequestRefMiddleware, if any.
func RequestRef(ctx context.Context) string {
	ref, _ := ctx.Value(common_models.RequestRefKey).(string)
	return ref
}
