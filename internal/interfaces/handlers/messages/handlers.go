package messages

import (
	msgsvc "estate-backend/internal/application/messages"
	"estate-backend/internal/pkg/apperror"
	"estate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *msgsvc.Service
}

// List GET /api/v1/messages — public.
func (h *Handlers) List(c *fiber.Ctx) error {
	msgs, err := h.Service.List(c.Context())
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Messages fetched successfully", msgs, nil)
}

// Create POST /api/v1/messages — public.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.AppError(c, apperror.Validation("Invalid request body", nil))
	}
	msg, err := h.Service.Create(c.Context(), body.Text)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Message created successfully", msg, nil)
}
