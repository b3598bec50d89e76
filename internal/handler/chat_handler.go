package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/OptionalMoth/Document-Chatbot/internal/port"
	"github.com/OptionalMoth/Document-Chatbot/internal/service"
)

// ChatHandler answers questions over the indexed documents.
type ChatHandler struct {
	query *service.QueryService
}

func NewChatHandler(query *service.QueryService) *ChatHandler {
	return &ChatHandler{query: query}
}

// Register sets up chat routes.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Post("/chat", h.Chat)
}

type chatRequest struct {
	Query string `json:"query"`
}

// Chat retrieves relevant chunks for the query and returns a cited answer.
func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var req chatRequest
	if err := c.Bind().JSON(&req); err != nil {
		return fail(c, port.ErrValidation)
	}

	answer, err := h.query.AnswerQuery(c.Context(), req.Query)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(answer)
}
