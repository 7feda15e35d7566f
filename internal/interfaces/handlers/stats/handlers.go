package stats

import (
	statsvc "estate-backend/internal/application/stats"
	"estate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *statsvc.Service
}

// Overview GET /api/v1/stats — admin-only aggregate counters.
func (h *Handlers) Overview(c *fiber.Ctx) error {
	s, err := h.Service.Collect(c.Context())
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Stats fetched successfully", s, nil)
}
