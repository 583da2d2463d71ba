package service

import (
	"cmp"
	"context"
	"errors"
	"net/url"
	"slices"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/linkshelf/bookmark-service/internal/auth"
	"github.com/linkshelf/bookmark-service/internal/domain"
	"github.com/linkshelf/bookmark-service/internal/events"
	"github.com/linkshelf/bookmark-service/internal/repository"
	apperrors "github.com/linkshelf/bookmark-service/pkg/util/errorutil"
)

// MaxBookmarkNameLength bounds bookmark names, counted in characters.
const MaxBookmarkNameLength = 256

// BookmarkInput carries the caller supplied fields of a bookmark.
type BookmarkInput struct {
	Name   string
	URI    string
	Access string
}

// BookmarkDependencies encapsulates collaborators of the bookmark service.
type BookmarkDependencies struct {
	Bookmarks  repository.BookmarkRepository
	Authorizer auth.Authorizer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// BookmarkService manages bookmarks on behalf of the user a token authorizes as.
type BookmarkService struct {
	bookmarks  repository.BookmarkRepository
	authorizer auth.Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewBookmarkService builds the service.
func NewBookmarkService(deps BookmarkDependencies) (*BookmarkService, error) {
	if deps.Bookmarks == nil || deps.Authorizer == nil {
		return nil, errors.New("bookmark service requires a repository and an authorizer")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &BookmarkService{
		bookmarks:  deps.Bookmarks,
		authorizer: deps.Authorizer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}, nil
}

// RegisterHandlers subscribes the service to user lifecycle events.
func (s *BookmarkService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventUserDeleted, func(ctx context.Context, event events.Event) error {
		_, err := s.PurgeOwner(ctx, event.Username)
		return err
	})
}

// Add stores a new bookmark for the caller.
func (s *BookmarkService) Add(ctx context.Context, token string, in BookmarkInput) (*domain.Bookmark, error) {
	owner, err := s.authorize(token)
	if err != nil {
		return nil, err
	}
	private, err := validateBookmark(in)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	bookmark := &domain.Bookmark{
		Owner:     owner,
		Name:      in.Name,
		URI:       in.URI,
		Private:   private,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.bookmarks.Create(ctx, bookmark); err != nil {
		return nil, mapBookmarkError(err)
	}

	s.publish(ctx, events.EventBookmarkCreated, bookmark)
	return bookmark, nil
}

// List returns the caller's bookmarks in creation order.
func (s *BookmarkService) List(ctx context.Context, token string) ([]domain.Bookmark, error) {
	owner, err := s.authorize(token)
	if err != nil {
		return nil, err
	}
	list, err := s.bookmarks.ListByOwner(ctx, owner)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return list, nil
}

// Update replaces the caller's bookmark called name. A different in.Name renames it.
func (s *BookmarkService) Update(ctx context.Context, token, name string, in BookmarkInput) (*domain.Bookmark, error) {
	owner, err := s.authorize(token)
	if err != nil {
		return nil, err
	}
	private, err := validateBookmark(in)
	if err != nil {
		return nil, err
	}

	bookmark := &domain.Bookmark{
		Owner:     owner,
		Name:      in.Name,
		URI:       in.URI,
		Private:   private,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.bookmarks.Update(ctx, name, bookmark); err != nil {
		return nil, mapBookmarkError(err)
	}

	s.publish(ctx, events.EventBookmarkUpdated, bookmark)
	return bookmark, nil
}

// Delete removes the caller's bookmark called name.
func (s *BookmarkService) Delete(ctx context.Context, token, name string) error {
	owner, err := s.authorize(token)
	if err != nil {
		return err
	}
	removed, err := s.bookmarks.Delete(ctx, owner, name)
	if err != nil {
		return mapBookmarkError(err)
	}

	s.publish(ctx, events.EventBookmarkDeleted, removed)
	return nil
}

// Public returns the distinct links of every public bookmark, sorted by name and then URI.
func (s *BookmarkService) Public(ctx context.Context, token string) ([]domain.BookmarkLink, error) {
	if _, err := s.authorize(token); err != nil {
		return nil, err
	}
	all, err := s.bookmarks.ListPublic(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	seen := make(map[domain.BookmarkLink]struct{}, len(all))
	links := make([]domain.BookmarkLink, 0, len(all))
	for _, b := range all {
		link := b.Link()
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}
	slices.SortFunc(links, func(a, b domain.BookmarkLink) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.URI, b.URI)
	})
	return links, nil
}

// PurgeOwner drops every bookmark of owner.
func (s *BookmarkService) PurgeOwner(ctx context.Context, owner string) (int, error) {
	n, err := s.bookmarks.DeleteByOwner(ctx, owner)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged bookmarks", zap.String("owner", owner), zap.Int("count", n))
	}
	return n, nil
}

func (s *BookmarkService) authorize(token string) (string, error) {
	owner := s.authorizer.Authorize(token)
	if owner == "" {
		return "", apperrors.NewUnauthorized(errNotAuthorized)
	}
	return owner, nil
}

func (s *BookmarkService) publish(ctx context.Context, eventType events.EventType, b *domain.Bookmark) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		Type:     eventType,
		Username: b.Owner,
		Payload:  events.BookmarkPayload{BookmarkID: b.ID, Name: b.Name, Private: b.Private},
	})
	if err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

// validateBookmark checks in and reports whether it asks for a private bookmark.
func validateBookmark(in BookmarkInput) (bool, error) {
	if in.Name == "" || in.URI == "" {
		return false, invalidData("name and uri required")
	}
	if utf8.RuneCountInString(in.Name) > MaxBookmarkNameLength {
		return false, apperrors.NewValidationError("name too long", reason(ReasonNameTooLong))
	}
	if u, err := url.Parse(in.URI); err != nil || u.Scheme == "" {
		return false, apperrors.NewValidationError("uri must be absolute", reason(ReasonInvalidURI))
	}
	access, ok := domain.ParseAccess(in.Access)
	if !ok {
		return false, apperrors.NewValidationError("access must be PUBLIC or PRIVATE", reason(ReasonInvalidAccess))
	}
	return access == domain.AccessPrivate, nil
}

func mapBookmarkError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("bookmark", nil)
	case errors.Is(err, repository.ErrConflict):
		return apperrors.NewConflict("bookmark already exists", reason(ReasonBookmarkExists))
	default:
		return apperrors.NewInternalError(err)
	}
}
