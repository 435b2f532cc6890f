package server

import (
	"errors"

	"placehold/internal/auth"
	"placehold/internal/models"
	"placehold/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps the error taxonomy to HTTP statuses. Conflicts answer
// 400 rather than 409 to keep the surface of the original API.
func statusForError(err error) int {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "NOT_FOUND":
			return fiber.StatusNotFound
		case "CONFLICT":
			return fiber.StatusBadRequest
		case "VALIDATION_ERROR":
			return fiber.StatusUnprocessableEntity
		case "UNAUTHORIZED":
			return fiber.StatusUnauthorized
		}
	}
	return fiber.StatusInternalServerError
}

// CreateUser handles POST /users/
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req models.UserCreate
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.validate.Struct(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError(err.Error()))
	}

	// Pre-check keeps the original "Email already registered" message; a
	// concurrent duplicate still loses at the unique constraint inside Create.
	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewConflictError("Email already registered"))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := req.ToUser(hash)
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.JSON(user)
}

// ListUsers handles GET /users/
func (s *Server) ListUsers(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", repository.DefaultListLimit)

	users, err := s.userRepo.List(c.Context(), skip, limit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(users)
}

// GetUser handles GET /users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError("Invalid user ID"))
	}

	user, err := s.userRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.JSON(user)
}

// UpdateUser handles PUT /users/:id. The whole resource is replaced field by
// field; the password field of the payload is ignored.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError("Invalid user ID"))
	}

	var req models.UserCreate
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.validate.Struct(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError(err.Error()))
	}

	user, err := s.userRepo.Update(c.Context(), uint(id), &req)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.JSON(user)
}

// DeleteUser handles DELETE /users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity,
			models.NewValidationError("Invalid user ID"))
	}

	if err := s.userRepo.Delete(c.Context(), uint(id)); err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}
