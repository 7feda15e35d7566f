package likes

import (
	"strconv"

	likesvc "estate-backend/internal/application/likes"
	"estate-backend/internal/middleware"
	"estate-backend/internal/pkg/apperror"
	"estate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *likesvc.Service
}

// Toggle POST /api/v1/listings/:id/like — anonymous like keyed on the
// caller's IP. A second call from the same IP removes the like.
func (h *Handlers) Toggle(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return response.AppError(c, err)
	}
	res, err := h.Service.Toggle(c.Context(), id, c.IP())
	if err != nil {
		return response.AppError(c, err)
	}
	msg := "Like removed"
	if res.Liked {
		msg = "Like added"
	}
	return response.Success(c, msg, res, nil)
}

// AddFavorite POST /api/v1/favorites — idempotent per user+listing.
func (h *Handlers) AddFavorite(c *fiber.Ctx) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		ListingID uint `json:"listing_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.ListingID == 0 {
		return response.AppError(c, apperror.FieldError("listing_id", "Must be a listing id"))
	}
	fav, err := h.Service.AddFavorite(c.Context(), p.ID, body.ListingID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Listing added to favorites", fav, nil)
}

// RemoveFavorite DELETE /api/v1/favorites/:listing_id
func (h *Handlers) RemoveFavorite(c *fiber.Ctx) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := strconv.ParseUint(c.Params("listing_id"), 10, 32)
	if err != nil || id == 0 {
		return response.AppError(c, apperror.FieldError("listing_id", "Invalid listing id"))
	}
	if err := h.Service.RemoveFavorite(c.Context(), p.ID, uint(id)); err != nil {
		return response.AppError(c, err)
	}
	return response.NoContent(c)
}

// ListFavorites GET /api/v1/favorites — the caller's favorites, newest first.
func (h *Handlers) ListFavorites(c *fiber.Ctx) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	favs, err := h.Service.ListFavorites(c.Context(), p.ID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Favorites fetched successfully", favs, nil)
}

func listingID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.FieldError("id", "Invalid listing id")
	}
	return uint(id), nil
}
