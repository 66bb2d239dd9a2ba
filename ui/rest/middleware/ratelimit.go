package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hiero-ledger/relay-lockgate/core/ratelimit"
)

// RateLimit gates every request by (ip, path) ahead of the JSON-RPC
// facade's own per-method limiting, catching abusive traffic before it
// even reaches the parser.
func RateLimit(limiter ratelimit.Limiter, limit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		if limiter.ShouldLimit(c.UserContext(), c.IP(), c.Path(), limit, c.Get(fiber.HeaderXRequestID)) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"jsonrpc": "2.0",
				"error":   fiber.Map{"code": -32605, "message": "IP rate limit exceeded"},
			})
		}

		return c.Next()
	}
}
