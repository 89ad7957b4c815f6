package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const callerIDHeader = "X-Caller-ID"

// CallerID extracts the platform-attested caller identity from the request
// header and makes it available to handlers. How the identity was
// authenticated upstream is the platform gateway's concern, not ours.
func CallerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := strings.TrimSpace(c.Get(callerIDHeader))
		if caller == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing "+callerIDHeader+" header")
		}
		if _, err := uuid.Parse(caller); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid "+callerIDHeader+" header")
		}

		c.Locals("caller_id", caller)

		return c.Next()
	}
}
