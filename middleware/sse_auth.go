// middleware/sse_auth.go
package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SSEAuthMiddleware validates `token` and `user` from query params.
// EventSource cannot set request headers, so the stream routes take the
// gateway token and user identity via the query string instead.
//
// Usage:
//
//	app.Get("/s/tasks/stream", middleware.SSEAuthMiddleware(), taskService.StreamTasksSSE)
func SSEAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("SERVICE_TOKEN")

	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query("token"))
		userID := strings.TrimSpace(c.Query("user"))

		if token == "" || userID == "" {
			log.Printf("[SSEAuth] ❌ Missing query params on %s", c.Path())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing token or user in query",
			})
		}

		if token != expectedToken {
			log.Printf("[SSEAuth] ❌ Invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
