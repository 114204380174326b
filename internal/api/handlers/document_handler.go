package handlers

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/swiftbeard/ragserver/internal/ingestion"
	"github.com/swiftbeard/ragserver/internal/storage/models"
	"github.com/swiftbeard/ragserver/pkg/logger"
)

// Ingestor runs the ingestion pipeline over an uploaded file.
type Ingestor interface {
	Ingest(ctx context.Context, data []byte, filename, contentType string) (*ingestion.IngestResult, error)
}

// DocumentService is the lifecycle surface over stored metadata.
type DocumentService interface {
	List() ([]models.DocumentMetadata, error)
	Get(id int64) (*models.DocumentMetadata, error)
	Delete(id int64) error
	Count() (int64, error)
}

type DocumentHandler struct {
	processor Ingestor
	documents DocumentService
}

func NewDocumentHandler(processor Ingestor, documents DocumentService) *DocumentHandler {
	return &DocumentHandler{
		processor: processor,
		documents: documents,
	}
}

func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded file", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	contentType := fileHeader.Header.Get("Content-Type")

	result, err := h.processor.Ingest(c.Context(), data, fileHeader.Filename, contentType)
	if err != nil {
		logger.Error("Failed to ingest document",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Successfully uploaded and processed %d document chunks from %s",
			result.ChunkCount, result.Filename),
		"chunk_count": result.ChunkCount,
		"filename":    result.Filename,
	})
}

func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	docs, err := h.documents.List()
	if err != nil {
		logger.Error("Failed to list documents", zap.Error(err))
		return errorResponse(c, err)
	}

	if docs == nil {
		docs = []models.DocumentMetadata{}
	}
	return c.JSON(docs)
}

func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document id",
		})
	}

	doc, err := h.documents.Get(id)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(doc)
}

func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document id",
		})
	}

	if err := h.documents.Delete(id); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Document deleted successfully",
	})
}

func (h *DocumentHandler) CountDocuments(c *fiber.Ctx) error {
	count, err := h.documents.Count()
	if err != nil {
		logger.Error("Failed to count documents", zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"count": count,
	})
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
