package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fatemameem/technest-backend/internal/service"
	"github.com/fatemameem/technest-backend/internal/utils"
)

type MediaHandler struct {
	svc     *service.MediaService
	sweeper *service.Sweeper
}

func NewMediaHandler(svc *service.MediaService, sweeper *service.Sweeper) *MediaHandler {
	return &MediaHandler{svc: svc, sweeper: sweeper}
}

// Upload handles POST /api/media/upload (multipart 'file' + optional 'alt').
// Role gating happens in middleware; by the time this runs the caller is an
// admin or moderator.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "file missing")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, "cannot open file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, "cannot read file")
	}

	ct := fileHeader.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
		fileHeader.Header.Set("Content-Type", ct)
	}
	if err := utils.ValidateImageHeader(fileHeader); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, err.Error())
	}

	actor, _ := c.Locals("email").(string)
	rec, err := h.svc.Upload(c.Context(), service.UploadInput{
		Filename:    fileHeader.Filename,
		ContentType: ct,
		Alt:         c.FormValue("alt"),
		Actor:       actor,
		Data:        data,
	})
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusCreated, rec)
}

// Get handles GET /api/media/:id.
func (h *MediaHandler) Get(c *fiber.Ctx) error {
	rec, err := h.svc.GetByID(c.Context(), c.Params("id"))
	if err == mongo.ErrNoDocuments {
		return utils.JSONError(c, fiber.StatusNotFound, "not found")
	}
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusOK, rec)
}

// Cleanup handles POST /api/media/cleanup (admin only).
func (h *MediaHandler) Cleanup(c *fiber.Ctx) error {
	sum, err := h.sweeper.Run(c.Context(), false)
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	msg := fmt.Sprintf("sweep complete: %d orphaned, %d deleted, %d errors", sum.Found, sum.Deleted, sum.Errors)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": msg,
		"data": fiber.Map{
			"found":   sum.Found,
			"deleted": sum.Deleted,
			"errors":  sum.Errors,
		},
	})
}
