package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/linkshelf/bookmark-service/internal/api/dto"
	"github.com/linkshelf/bookmark-service/internal/auth"
	"github.com/linkshelf/bookmark-service/internal/service"
)

// BookmarksHandler exposes bookmark endpoints. Every route needs a bearer token.
type BookmarksHandler struct {
	bookmarks *service.BookmarkService
}

// NewBookmarksHandler constructs handler.
func NewBookmarksHandler(bookmarks *service.BookmarkService) *BookmarksHandler {
	return &BookmarksHandler{bookmarks: bookmarks}
}

// List handles GET {root}/bookmark.
func (h *BookmarksHandler) List(c *fiber.Ctx) error {
	token, _ := auth.TokenFromContext(c)
	list, err := h.bookmarks.List(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookmarkList(list)})
}

// Create handles POST {root}/bookmark.
func (h *BookmarksHandler) Create(c *fiber.Ctx) error {
	var req dto.BookmarkRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, _ := auth.TokenFromContext(c)

	b, err := h.bookmarks.Add(c.UserContext(), token, toInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewBookmarkResponse(b)})
}

// Public handles GET {root}/bookmark/public.
func (h *BookmarksHandler) Public(c *fiber.Ctx) error {
	token, _ := auth.TokenFromContext(c)
	links, err := h.bookmarks.Public(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookmarkLinks(links)})
}

// Update handles PUT {root}/bookmark/:name.
func (h *BookmarksHandler) Update(c *fiber.Ctx) error {
	var req dto.BookmarkRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, _ := auth.TokenFromContext(c)

	b, err := h.bookmarks.Update(c.UserContext(), token, c.Params("name"), toInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookmarkResponse(b)})
}

// Delete handles DELETE {root}/bookmark/:name.
func (h *BookmarksHandler) Delete(c *fiber.Ctx) error {
	token, _ := auth.TokenFromContext(c)
	if err := h.bookmarks.Delete(c.UserContext(), token, c.Params("name")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func toInput(req dto.BookmarkRequest) service.BookmarkInput {
	return service.BookmarkInput{Name: req.Name, URI: req.URI, Access: req.Access}
}
