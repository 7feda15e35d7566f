package locations

import (
	"strconv"

	locsvc "estate-backend/internal/application/locations"
	"estate-backend/internal/pkg/apperror"
	"estate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *locsvc.Service
}

// List GET /api/v1/locations — public, ordered by city then district.
func (h *Handlers) List(c *fiber.Ctx) error {
	locs, err := h.Service.List(c.Context())
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Locations fetched successfully", locs, nil)
}

// Create POST /api/v1/locations — any authenticated user.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		City     string `json:"city"`
		District string `json:"district"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.AppError(c, apperror.Validation("Invalid request body", nil))
	}
	loc, err := h.Service.Create(c.Context(), body.City, body.District)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Location created successfully", loc, nil)
}

// Delete DELETE /api/v1/locations/:id — any authenticated user; listings
// keep their rows with location_id reset to NULL.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.AppError(c, apperror.FieldError("id", "Invalid location id"))
	}
	if err := h.Service.Delete(c.Context(), uint(id)); err != nil {
		return response.AppError(c, err)
	}
	return response.NoContent(c)
}
