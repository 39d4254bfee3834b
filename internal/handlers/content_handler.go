package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fatemameem/technest-backend/internal/models"
	"github.com/fatemameem/technest-backend/internal/repository"
	"github.com/fatemameem/technest-backend/internal/utils"
)

// ContentHandler exposes the admin CRUD for the content collections. These
// are thin repository pass-throughs; the interesting behavior (media
// referencing) lives in the models and the sweeper.
type ContentHandler struct {
	repo *repository.ContentRepo
}

func NewContentHandler(repo *repository.ContentRepo) *ContentHandler {
	return &ContentHandler{repo: repo}
}

const listLimit = 500

func (h *ContentHandler) CreateBlogPost(c *fiber.Ctx) error {
	var p models.BlogPost
	if err := c.BodyParser(&p); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	if p.Title == "" || p.Slug == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "title and slug required")
	}
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	if err := h.repo.InsertBlogPost(c.Context(), &p); err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusCreated, fiber.Map{
		"post":        p,
		"readingTime": p.ReadingTime(),
	})
}

func (h *ContentHandler) ListBlogPosts(c *fiber.Ctx) error {
	posts, err := h.repo.ListBlogPosts(c.Context(), listLimit)
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusOK, posts)
}

func (h *ContentHandler) GetBlogPost(c *fiber.Ctx) error {
	p, err := h.repo.GetBlogPostBySlug(c.Context(), c.Params("slug"))
	if err == mongo.ErrNoDocuments {
		return utils.JSONError(c, fiber.StatusNotFound, "not found")
	}
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusOK, fiber.Map{
		"post":        p,
		"readingTime": p.ReadingTime(),
	})
}

func (h *ContentHandler) DeleteBlogPost(c *fiber.Ctx) error {
	return h.deleteByID(c, h.repo.DeleteBlogPost)
}

func (h *ContentHandler) CreateEvent(c *fiber.Ctx) error {
	var e models.Event
	if err := c.BodyParser(&e); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	if e.Title == "" || e.Slug == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "title and slug required")
	}
	if e.ID == "" {
		e.ID = utils.NewID()
	}
	if err := h.repo.InsertEvent(c.Context(), &e); err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusCreated, e)
}

func (h *ContentHandler) ListEvents(c *fiber.Ctx) error {
	evs, err := h.repo.ListEvents(c.Context(), listLimit)
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusOK, evs)
}

func (h *ContentHandler) DeleteEvent(c *fiber.Ctx) error {
	return h.deleteByID(c, h.repo.DeleteEvent)
}

func (h *ContentHandler) CreatePodcastEpisode(c *fiber.Ctx) error {
	var p models.PodcastEpisode
	if err := c.BodyParser(&p); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	if p.Title == "" || p.Slug == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "title and slug required")
	}
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	if err := h.repo.InsertPodcastEpisode(c.Context(), &p); err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusCreated, p)
}

func (h *ContentHandler) ListPodcastEpisodes(c *fiber.Ctx) error {
	eps, err := h.repo.ListPodcastEpisodes(c.Context(), listLimit)
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusOK, eps)
}

func (h *ContentHandler) DeletePodcastEpisode(c *fiber.Ctx) error {
	return h.deleteByID(c, h.repo.DeletePodcastEpisode)
}

func (h *ContentHandler) CreateTeamMember(c *fiber.Ctx) error {
	var m models.TeamMember
	if err := c.BodyParser(&m); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	if m.Name == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "name required")
	}
	if m.ID == "" {
		m.ID = utils.NewID()
	}
	if err := h.repo.InsertTeamMember(c.Context(), &m); err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusCreated, m)
}

func (h *ContentHandler) ListTeamMembers(c *fiber.Ctx) error {
	members, err := h.repo.ListTeamMembers(c.Context(), listLimit)
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusOK, members)
}

func (h *ContentHandler) DeleteTeamMember(c *fiber.Ctx) error {
	return h.deleteByID(c, h.repo.DeleteTeamMember)
}

func (h *ContentHandler) deleteByID(c *fiber.Ctx, del func(ctx context.Context, id string) error) error {
	err := del(c.Context(), c.Params("id"))
	if err == mongo.ErrNoDocuments {
		return utils.JSONError(c, fiber.StatusNotFound, "not found")
	}
	if err != nil {
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.JSONDoc(c, fiber.StatusOK, fiber.Map{"id": c.Params("id")})
}
