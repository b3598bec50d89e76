package handler

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// AdminHandler exposes service status and collection maintenance routes.
type AdminHandler struct {
	store      port.VectorStore
	appName    string
	collection string
}

func NewAdminHandler(store port.VectorStore, appName, collection string) *AdminHandler {
	return &AdminHandler{store: store, appName: appName, collection: collection}
}

// Register sets up admin routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/", h.Root)
	router.Get("/health", h.Health)
	router.Get("/stats", h.Stats)
	router.Delete("/clear", h.Clear)
}

// Root returns a short service banner.
func (h *AdminHandler) Root(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("%s is running", h.appName),
	})
}

// Health is the liveness probe.
func (h *AdminHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// Stats reports the number of indexed chunks.
func (h *AdminHandler) Stats(c fiber.Ctx) error {
	count, err := h.store.Count(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"collection": h.collection,
		"points":     count,
	})
}

// Clear drops every indexed document.
func (h *AdminHandler) Clear(c fiber.Ctx) error {
	if err := h.store.Drop(c.Context()); err != nil {
		return fail(c, err)
	}
	slog.Info("collection cleared", "collection", h.collection)
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "all documents cleared",
	})
}
