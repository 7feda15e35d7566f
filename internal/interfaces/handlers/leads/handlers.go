package leads

import (
	"io"
	"strconv"
	"strings"

	"estate-backend/internal/application/images"
	leadsvc "estate-backend/internal/application/leads"
	"estate-backend/internal/middleware"
	"estate-backend/internal/pkg/apperror"
	"estate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *leadsvc.Service
}

// Submit POST /api/v1/applications — works for anonymous callers too; a
// logged-in submitter gets linked to the record.
func (h *Handlers) Submit(c *fiber.Ctx) error {
	in, err := submitInput(c)
	if err != nil {
		return response.AppError(c, err)
	}
	app, err := h.Service.Submit(c.Context(), in, viewerFrom(c))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Application submitted successfully", app, nil)
}

// List GET /api/v1/applications — admins see everything, realtors see leads
// on their own listings plus their own submissions, users see their own.
func (h *Handlers) List(c *fiber.Ctx) error {
	apps, err := h.Service.List(c.Context(), viewerFrom(c))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Applications fetched successfully", apps, nil)
}

// Get GET /api/v1/applications/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.AppError(c, err)
	}
	app, err := h.Service.Get(c.Context(), id, viewerFrom(c))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Application fetched successfully", app, nil)
}

// Update PATCH /api/v1/applications/:id — submitter or admin.
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.AppError(c, err)
	}
	var in leadsvc.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return response.AppError(c, apperror.Validation("Invalid request body", nil))
	}
	app, err := h.Service.Update(c.Context(), id, in, viewerFrom(c))
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Application updated successfully", app, nil)
}

// Delete DELETE /api/v1/applications/:id — submitter or admin, hard delete.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.AppError(c, err)
	}
	if err := h.Service.Delete(c.Context(), id, viewerFrom(c)); err != nil {
		return response.AppError(c, err)
	}
	return response.NoContent(c)
}

func viewerFrom(c *fiber.Ctx) *leadsvc.Viewer {
	p := middleware.CurrentUser(c)
	if p == nil {
		return nil
	}
	return &leadsvc.Viewer{ID: p.ID, Admin: p.IsAdmin(), Realtor: p.IsRealtor()}
}

func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.FieldError("id", "Invalid application id")
	}
	return uint(id), nil
}

func submitInput(c *fiber.Ctx) (leadsvc.SubmitInput, error) {
	var in leadsvc.SubmitInput
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&in); err != nil {
			return in, apperror.Validation("Invalid request body", nil)
		}
		return in, nil
	}

	in.Name = strings.TrimSpace(c.FormValue("name"))
	in.ContactPhone = strings.TrimSpace(c.FormValue("contact_phone"))
	in.Message = c.FormValue("message")
	if raw := strings.TrimSpace(c.FormValue("listing_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return in, apperror.FieldError("listing_id", "Must be an integer")
		}
		u := uint(id)
		in.ListingID = &u
	}
	fh, err := c.FormFile("image")
	if err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return in, apperror.FieldError("image", "Could not read uploaded file")
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			return in, apperror.FieldError("image", "Could not read uploaded file")
		}
		in.Upload = &images.Upload{FileName: fh.Filename, Content: content}
	}
	return in, nil
}
