package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSMiddleware allows the admin frontends to call the list endpoints.
func CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  "http://localhost:3000, http://localhost:3001, http://localhost:8000",
		AllowMethods:  "GET,OPTIONS",
		AllowHeaders:  "Content-Type,X-Request-Ref",
		ExposeHeaders: "X-Request-Ref,Content-Disposition",
	})
}
