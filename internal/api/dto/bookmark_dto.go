package dto

import (
	"time"

	"github.com/linkshelf/bookmark-service/internal/domain"
)

// BookmarkRequest is the payload of create and update.
type BookmarkRequest struct {
	Name   string `json:"name" validate:"required,max=256"`
	URI    string `json:"uri" validate:"required"`
	Access string `json:"access" validate:"omitempty,oneof=PUBLIC PRIVATE public private"`
}

// BookmarkResponse is an owned bookmark as returned to its owner.
type BookmarkResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	URI       string        `json:"uri"`
	Access    domain.Access `json:"access"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BookmarkLinkResponse is one entry of the public listing.
type BookmarkLinkResponse struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// NewBookmarkResponse maps a domain bookmark.
func NewBookmarkResponse(b *domain.Bookmark) BookmarkResponse {
	return BookmarkResponse{
		ID:        b.ID,
		Name:      b.Name,
		URI:       b.URI,
		Access:    b.Access(),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// NewBookmarkList maps bookmarks preserving order.
func NewBookmarkList(list []domain.Bookmark) []BookmarkResponse {
	out := make([]BookmarkResponse, 0, len(list))
	for i := range list {
		out = append(out, NewBookmarkResponse(&list[i]))
	}
	return out
}

// NewBookmarkLinks maps public links preserving order.
func NewBookmarkLinks(links []domain.BookmarkLink) []BookmarkLinkResponse {
	out := make([]BookmarkLinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, BookmarkLinkResponse{Name: l.Name, URI: l.URI})
	}
	return out
}
