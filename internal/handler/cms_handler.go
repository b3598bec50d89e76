package handler

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
	"github.com/OptionalMoth/Document-Chatbot/internal/service"
)

// CMSHandler handles content pushed from an external CMS.
type CMSHandler struct {
	ingest *service.IngestService
}

func NewCMSHandler(ingest *service.IngestService) *CMSHandler {
	return &CMSHandler{ingest: ingest}
}

// Register sets up CMS import routes.
func (h *CMSHandler) Register(router fiber.Router) {
	router.Post("/import-cms", h.Import)
}

type cmsImportRequest struct {
	Content  string         `json:"content"`
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata"`
}

// Import ingests a single CMS content item.
func (h *CMSHandler) Import(c fiber.Ctx) error {
	var req cmsImportRequest
	if err := c.Bind().JSON(&req); err != nil {
		return fail(c, fmt.Errorf("%w: invalid request body", port.ErrValidation))
	}
	if strings.TrimSpace(req.Content) == "" {
		return fail(c, fmt.Errorf("%w: content cannot be empty", port.ErrValidation))
	}

	doc := domain.NewCMSDocument(req.Source, req.Content, req.Metadata)
	res, err := h.ingest.Ingest(c.Context(), doc)
	if err != nil {
		return fail(c, err)
	}

	message := fmt.Sprintf("indexed %d chunks from %s", res.ChunkCount, doc.Source)
	if res.Status == domain.IngestStatusEmpty {
		message = "content produced no indexable text"
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"source":  doc.Source,
		"chunks":  res.ChunkCount,
		"message": message,
	})
}
