package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const maxQueryLength = 2000

// RequestValidator enforces basic request hygiene before handlers run.
func RequestValidator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost && strings.HasSuffix(c.Path(), "/query") {
			contentType := c.Get("Content-Type")
			if !strings.HasPrefix(contentType, "application/json") {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Content-Type must be application/json",
				})
			}
			if len(c.Body()) > maxQueryLength*2 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Request body too large",
				})
			}
		}

		return c.Next()
	}
}
