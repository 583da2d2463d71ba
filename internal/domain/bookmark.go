package domain

import (
	"strings"
	"time"
)

// Access controls who can see a bookmark through the public listing.
type Access string

const (
	AccessPublic  Access = "PUBLIC"
	AccessPrivate Access = "PRIVATE"
)

// ParseAccess maps a request value onto an Access. Empty defaults to public.
func ParseAccess(v string) (Access, bool) {
	switch Access(strings.ToUpper(strings.TrimSpace(v))) {
	case "", AccessPublic:
		return AccessPublic, true
	case AccessPrivate:
		return AccessPrivate, true
	default:
		return "", false
	}
}

// Bookmark is a named URI owned by one user. Names are unique per owner.
type Bookmark struct {
	ID        string
	Owner     string
	Name      string
	URI       string
	Private   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Access returns the visibility of the bookmark.
func (b Bookmark) Access() Access {
	if b.Private {
		return AccessPrivate
	}
	return AccessPublic
}

// Link returns the public projection of the bookmark.
func (b Bookmark) Link() BookmarkLink {
	return BookmarkLink{Name: b.Name, URI: b.URI}
}

// BookmarkLink is what other users see of a public bookmark.
type BookmarkLink struct {
	Name string
	URI  string
}
