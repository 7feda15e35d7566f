package users

import (
	"strconv"

	usersvc "estate-backend/internal/application/users"
	"estate-backend/internal/pkg/apperror"
	"estate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *usersvc.Service
}

// Register POST /api/v1/users/register — open registration (admin account).
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req usersvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.Register(c.Context(), req)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "User registered", fiber.Map{"user": user}, nil)
}

// CreateRealtor POST /api/v1/users/create-realtor — admin-only.
func (h *Handlers) CreateRealtor(c *fiber.Ctx) error {
	var req usersvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.CreateRealtor(c.Context(), req)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.SuccessCreated(c, "Realtor created", fiber.Map{"user": user}, nil)
}

// UpdateRole PATCH /api/v1/users/:id/role — admin-only; the target's sessions
// are destroyed so the new role takes effect on next login.
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.AppError(c, err)
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.UpdateRole(c.Context(), id, req.Role)
	if err != nil {
		return response.AppError(c, err)
	}
	return response.Success(c, "Role updated", fiber.Map{"user": user}, nil)
}

// Remove DELETE /api/v1/users/:id — admin-only hard delete.
func (h *Handlers) Remove(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return response.AppError(c, err)
	}
	if err := h.Service.Remove(c.Context(), id); err != nil {
		return response.AppError(c, err)
	}
	return response.NoContent(c)
}

func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, apperror.FieldError("id", "Invalid user id")
	}
	return uint(id), nil
}
