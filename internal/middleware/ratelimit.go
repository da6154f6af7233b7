package middleware

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// LoginRateLimit limits login attempts per client IP. Credential stuffing is
// the only brute-forceable surface here, so only the login route carries it.
func LoginRateLimit(rate limiter.Rate) fiber.Handler {
	lim := limiter.New(memory.NewStore(), rate)

	return func(c *fiber.Ctx) error {
		lctx, err := lim.Get(c.Context(), c.IP())
		if err != nil {
			log.Printf("Rate limiter failure for %s: %v", c.IP(), err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not evaluate rate limit",
			})
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))

		if lctx.Reached {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many login attempts, try again later",
			})
		}
		return c.Next()
	}
}
