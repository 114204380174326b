package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/swiftbeard/ragserver/internal/history"
	"github.com/swiftbeard/ragserver/internal/storage/models"
	"github.com/swiftbeard/ragserver/pkg/logger"
)

// HistoryService is the lifecycle surface over the query audit trail.
type HistoryService interface {
	ListAll() ([]models.QueryRecord, error)
	ListRecent(limit int) ([]models.QueryRecord, error)
	ListBetween(start, end time.Time) ([]models.QueryRecord, error)
	Get(id int64) (*models.QueryRecord, error)
	Count() (int64, error)
	CountSince(since time.Time) (int64, error)
	Delete(id int64) error
	DeleteAll() error
}

type HistoryHandler struct {
	history HistoryService
}

func NewHistoryHandler(h HistoryService) *HistoryHandler {
	return &HistoryHandler{history: h}
}

// ListHistory returns the full audit trail, or the records within
// [start, end] when both unix-second bounds are supplied.
func (h *HistoryHandler) ListHistory(c *fiber.Ctx) error {
	var records []models.QueryRecord
	var err error

	startParam, endParam := c.Query("start"), c.Query("end")
	if startParam != "" || endParam != "" {
		start, serr := strconv.ParseInt(startParam, 10, 64)
		end, eerr := strconv.ParseInt(endParam, 10, 64)
		if serr != nil || eerr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "start and end must both be unix timestamps",
			})
		}
		records, err = h.history.ListBetween(time.Unix(start, 0), time.Unix(end, 0))
	} else {
		records, err = h.history.ListAll()
	}
	if err != nil {
		logger.Error("Failed to list history", zap.Error(err))
		return errorResponse(c, err)
	}

	if records == nil {
		records = []models.QueryRecord{}
	}
	return c.JSON(records)
}

func (h *HistoryHandler) ListRecentHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", history.DefaultRecentLimit)

	records, err := h.history.ListRecent(limit)
	if err != nil {
		logger.Error("Failed to list recent history", zap.Error(err))
		return errorResponse(c, err)
	}

	if records == nil {
		records = []models.QueryRecord{}
	}
	return c.JSON(records)
}

func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid history id",
		})
	}

	record, err := h.history.Get(id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(record)
}

func (h *HistoryHandler) CountHistory(c *fiber.Ctx) error {
	if since := c.Query("since"); since != "" {
		ts, err := strconv.ParseInt(since, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid since timestamp",
			})
		}

		count, err := h.history.CountSince(time.Unix(ts, 0))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{"count": count})
	}

	count, err := h.history.Count()
	if err != nil {
		logger.Error("Failed to count history", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"count": count,
	})
}

func (h *HistoryHandler) DeleteHistory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid history id",
		})
	}

	if err := h.history.Delete(id); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Query history deleted successfully",
	})
}

func (h *HistoryHandler) DeleteAllHistory(c *fiber.Ctx) error {
	if err := h.history.DeleteAll(); err != nil {
		logger.Error("Failed to delete history", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "All query history deleted successfully",
	})
}
