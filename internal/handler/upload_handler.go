package handler

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/gofiber/fiber/v3"

	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
	"github.com/OptionalMoth/Document-Chatbot/internal/service"
)

// UploadHandler handles document file uploads.
type UploadHandler struct {
	ingest      *service.IngestService
	extractor   port.TextExtractor
	concurrency int
}

// NewUploadHandler creates a new upload handler. concurrency bounds the
// worker pool used for multi-file uploads.
func NewUploadHandler(ingest *service.IngestService, extractor port.TextExtractor, concurrency int) *UploadHandler {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &UploadHandler{ingest: ingest, extractor: extractor, concurrency: concurrency}
}

// Register sets up upload routes.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("/upload", h.Upload)
}

// Upload ingests one or more uploaded files. Each file succeeds or fails
// on its own; the response carries per-file results plus a batch summary.
func (h *UploadHandler) Upload(c fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, fmt.Errorf("%w: expected multipart form data", port.ErrValidation))
	}

	files := form.File["file"]
	if len(files) == 0 {
		return fail(c, fmt.Errorf("%w: no file provided", port.ErrValidation))
	}

	var (
		docs    []domain.Document
		results []domain.IngestResult
	)
	for _, fh := range files {
		doc, err := h.readFile(fh)
		if err != nil {
			slog.Warn("upload rejected", "filename", fh.Filename, "error", err)
			results = append(results, domain.IngestResult{
				Source: fh.Filename,
				Status: domain.IngestStatusFailed,
				Error:  rejectionMessage(err),
			})
			continue
		}
		docs = append(docs, doc)
	}

	results = append(results, h.ingest.IngestAll(c.Context(), docs, h.concurrency)...)

	// Single-file uploads keep the flat response shape.
	if len(files) == 1 {
		res := results[0]
		if res.Status == domain.IngestStatusFailed {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":   res.Status,
				"filename": res.Source,
				"error":    res.Error,
			})
		}
		return c.JSON(fiber.Map{
			"status":   "success",
			"filename": res.Source,
			"chunks":   res.ChunkCount,
		})
	}

	succeeded, failedCount := 0, 0
	for _, res := range results {
		if res.Status == domain.IngestStatusFailed {
			failedCount++
		} else {
			succeeded++
		}
	}
	return c.JSON(fiber.Map{
		"status": "done",
		"files":  results,
		"summary": fiber.Map{
			"succeeded": succeeded,
			"failed":    failedCount,
		},
	})
}

// readFile extracts a file's plain text and wraps it as a document.
func (h *UploadHandler) readFile(fh *multipart.FileHeader) (domain.Document, error) {
	if !h.extractor.Supports(fh.Filename) {
		return domain.Document{}, fmt.Errorf("%w: unsupported file type for %q", port.ErrValidation, fh.Filename)
	}

	f, err := fh.Open()
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: open %q: %v", port.ErrExtraction, fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: read %q: %v", port.ErrExtraction, fh.Filename, err)
	}

	text, err := h.extractor.Extract(fh.Filename, data)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.NewFileDocument(fh.Filename, text), nil
}

func rejectionMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
