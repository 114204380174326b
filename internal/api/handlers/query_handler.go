package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/swiftbeard/ragserver/internal/query"
	"github.com/swiftbeard/ragserver/pkg/logger"
)

// QueryService answers a question with retrieval-augmented generation.
type QueryService interface {
	Answer(ctx context.Context, question string, topK *int) (*query.Response, error)
}

type QueryHandler struct {
	engine QueryService
}

func NewQueryHandler(engine QueryService) *QueryHandler {
	return &QueryHandler{engine: engine}
}

func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	var req struct {
		Query string `json:"query"`
		TopK  *int   `json:"top_k"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	response, err := h.engine.Answer(c.Context(), req.Query, req.TopK)
	if err != nil {
		logger.Error("Failed to process query", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(response)
}
