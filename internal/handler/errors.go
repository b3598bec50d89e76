package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// fail maps an error to its taxonomy kind's HTTP status and short message.
// Raw lower-level errors never reach the client.
func fail(c fiber.Ctx, err error) error {
	status, message := fiber.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, port.ErrValidation):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, port.ErrExtraction):
		status, message = fiber.StatusBadRequest, "could not extract text from the file"
	case errors.Is(err, port.ErrEmbedding):
		status, message = fiber.StatusBadGateway, "embedding service unavailable"
	case errors.Is(err, port.ErrStore):
		status, message = fiber.StatusBadGateway, "vector store unavailable"
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}
