package middleware

import (
	"errors"
	"log"
	"strings"

	"salesku/internal/models"
	"salesku/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware that authenticates every request to a
// restricted route. The session store is re-checked on each request, not
// just when the token was issued, so a session revoked in the meantime
// forces the client back to login.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message":  "Authorization header is required",
				"redirect": "/login",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message":  "Authorization header format must be 'Bearer <token>'",
				"redirect": "/login",
			})
		}

		sessionID, sess, err := authService.Authenticate(c.Context(), parts[1])
		if err != nil {
			if errors.Is(err, services.ErrSessionExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message":  "Session has ended, please log in again",
					"redirect": "/login",
				})
			}
			log.Printf("Token validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message":  "Invalid or expired token",
				"redirect": "/login",
			})
		}

		// Store session data in Fiber context for subsequent handlers
		c.Locals("session_id", sessionID)
		c.Locals("username", sess.Username)
		c.Locals("role", sess.Role)

		return c.Next()
	}
}

// RequireRole rejects authenticated requests whose session role does not
// match. It runs after AuthRequired.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, ok := c.Locals("role").(models.Role)
		if !ok || current != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access denied",
			})
		}
		return c.Next()
	}
}
