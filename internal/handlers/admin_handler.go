package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fatemameem/technest-backend/internal/auth"
	"github.com/fatemameem/technest-backend/internal/models"
	"github.com/fatemameem/technest-backend/internal/repository"
	"github.com/fatemameem/technest-backend/internal/utils"
)

// AdminHandler manages the role allow-list. Admin-only routes.
type AdminHandler struct {
	repo *repository.AdminRepo
}

func NewAdminHandler(repo *repository.AdminRepo) *AdminHandler {
	return &AdminHandler{repo: repo}
}

func (h *AdminHandler) Create(c *fiber.Ctx) error {
	var u models.AdminUser
	if err := c.BodyParser(&u); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	if u.Email == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "email required")
	}
	if u.Role != auth.RoleAdmin && u.Role != auth.RoleModerator {
		return utils.JSONError(c, fiber.StatusBadRequest, "role must be admin or moderator")
	}
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if err := h.repo.Insert(c.Context(), &u); err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusCreated, u)
}

func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	err := h.repo.Delete(c.Context(), c.Params("id"))
	if err == mongo.ErrNoDocuments {
		return utils.JSONError(c, fiber.StatusNotFound, "not found")
	}
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusOK, fiber.Map{"id": c.Params("id")})
}
