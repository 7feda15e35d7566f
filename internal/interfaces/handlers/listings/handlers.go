package listings

import (
	"strconv"
	"strings"

	listsvc "estate-backend/internal/application/listings"
	"estate-backend/internal/middleware"
	"estate-backend/internal/pkg/apperror"
	"estate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *listsvc.Service
}

// List GET /api/v1/listings — filtered, searched, ordered, paginated.
// Inactive listings are visible to admins only.
func (h *Handlers) List(c *fiber.Ctx) error {
	f, err := parseFilters(c)
	if err != nil {
		return response.AppError(c, err)
	}
	items, total, err := h.Service.List(c.Context(), f, viewerFrom(c))
	if err != nil {
		return response.AppError(c, err)
	}
	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return response.Success(c, "Listings fetched successfully", items, fiber.Map{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// Create POST /api/v1/listings — owner is always the authenticated caller.
// Accepts JSON, or multipart/form-data with image files under "images".
func (h *Handlers) Create(c *fiber.Ctx) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	in, err := createInput(c)
	if err != nil {
		return response.AppError(c, err)
	}
	listing, err := h.Service.Create(c.Context(), in, p.ID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Listing created successfully", listing, nil)
}

// My GET /api/v1/listings/my — the caller's own listings, active or not.
func (h *Handlers) My(c *fiber.Ctx) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.ListOwned(c.Context(), p.ID)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Own listings fetched successfully", items, nil)
}

// Get GET /api/v1/listings/:id — detail view, returned regardless of
// is_active.
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.AppError(c, err)
	}
	listing, err := h.Service.Get(c.Context(), id)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Listing fetched successfully", listing, nil)
}

// Update PUT/PATCH /api/v1/listings/:id — partial update, owner or admin.
func (h *Handlers) Update(c *fiber.Ctx) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := idParam(c)
	if err != nil {
		return response.AppError(c, err)
	}
	in, err := updateInput(c)
	if err != nil {
		return response.AppError(c, err)
	}
	listing, err := h.Service.Update(c.Context(), id, in, listsvc.Viewer{ID: p.ID, Admin: p.IsAdmin()})
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Listing updated successfully", listing, nil)
}

// Delete DELETE /api/v1/listings/:id — soft delete (is_active=false).
func (h *Handlers) Delete(c *fiber.Ctx) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := idParam(c)
	if err != nil {
		return response.AppError(c, err)
	}
	if err := h.Service.SoftDelete(c.Context(), id, listsvc.Viewer{ID: p.ID, Admin: p.IsAdmin()}); err != nil {
		return response.AppError(c, err)
	}
	return response.NoContent(c)
}

// BulkUpdate PUT /api/v1/listings — list of {id, fields}; items that fail
// are skipped and the response reports the count actually changed.
func (h *Handlers) BulkUpdate(c *fiber.Ctx) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var items []listsvc.BulkItem
	if err := c.BodyParser(&items); err != nil {
		return response.Error(c, "Expected a list of objects", fiber.StatusBadRequest, nil)
	}
	updated := h.Service.BulkUpdate(c.Context(), items, listsvc.Viewer{ID: p.ID, Admin: p.IsAdmin()})
	return response.Success(c, "Bulk update finished", fiber.Map{"updated": updated}, nil)
}

// BulkDelete DELETE /api/v1/listings — list of ids; missing or foreign ids
// are silently skipped.
func (h *Handlers) BulkDelete(c *fiber.Ctx) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		IDs []uint `json:"ids"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Expected a list of ids", fiber.StatusBadRequest, nil)
	}
	deleted := h.Service.BulkSoftDelete(c.Context(), body.IDs, listsvc.Viewer{ID: p.ID, Admin: p.IsAdmin()})
	return response.Success(c, "Bulk delete finished", fiber.Map{"deleted": deleted}, nil)
}

// AttachMedia POST /api/v1/listings/:id/images — multipart upload of image
// or video files; owner or admin only.
func (h *Handlers) AttachMedia(c *fiber.Ctx) error {
	p := middleware.CurrentUser(c)
	if p == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := idParam(c)
	if err != nil {
		return response.AppError(c, err)
	}
	listing, err := h.Service.Get(c.Context(), id)
	if err != nil {
		return response.AppError(c, err)
	}
	if !p.IsAdmin() && !p.Owns(listing.OwnerID) {
		return response.AppError(c, apperror.Forbidden("Only the owner or an admin may attach media"))
	}
	uploads, err := formUploads(c, "images")
	if err != nil {
		return response.AppError(c, err)
	}
	if len(uploads) == 0 {
		return response.AppError(c, apperror.FieldError("images", "No files supplied"))
	}
	if err := h.Service.Images.AttachBatch(c.Context(), listing, uploads, len(listing.Images)); err != nil {
		return response.AppError(c, err)
	}
	listing, err = h.Service.Get(c.Context(), id)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Media attached successfully", listing, nil)
}

func viewerFrom(c *fiber.Ctx) *listsvc.Viewer {
	p := middleware.CurrentUser(c)
	if p == nil {
		return nil
	}
	return &listsvc.Viewer{ID: p.ID, Admin: p.IsAdmin()}
}

func idParam(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.FieldError("id", "Invalid listing id")
	}
	return uint(id), nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}
