package handlers

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/swiftbeard/ragserver/internal/apperr"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation maps to 400", apperr.Validationf("bad input"), fiber.StatusBadRequest},
		{"not found maps to 404", apperr.NotFoundf("document 7"), fiber.StatusNotFound},
		{"io maps to 502", apperr.IOf("parse failed"), fiber.StatusBadGateway},
		{"upstream maps to 502", apperr.Upstreamf("model down"), fiber.StatusBadGateway},
		{"unknown maps to 500", errors.New("something else"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFromError(tt.err))
		})
	}
}

func TestStatusFromWrappedError(t *testing.T) {
	err := apperr.NotFoundf("document 7")
	wrapped := errors.Join(errors.New("while handling request"), err)

	assert.Equal(t, fiber.StatusNotFound, statusFromError(wrapped))
}
