package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/swiftbeard/ragserver/internal/apperr"
)

// statusFromError is the only place error kinds become HTTP statuses.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrIO), errors.Is(err, apperr.ErrUpstream):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
