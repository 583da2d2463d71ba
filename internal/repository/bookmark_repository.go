package repository

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linkshelf/bookmark-service/internal/domain"
)

// BookmarkRepository defines storage access for bookmarks. Names are unique per owner and
// listings keep creation order.
type BookmarkRepository interface {
	Create(ctx context.Context, bookmark *domain.Bookmark) error
	GetByName(ctx context.Context, owner, name string) (*domain.Bookmark, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.Bookmark, error)
	ListPublic(ctx context.Context) ([]domain.Bookmark, error)
	Update(ctx context.Context, name string, bookmark *domain.Bookmark) error
	Delete(ctx context.Context, owner, name string) (*domain.Bookmark, error)
	DeleteByOwner(ctx context.Context, owner string) (int, error)
}

type bookmarkRepository struct {
	mu      sync.RWMutex
	byOwner map[string][]domain.Bookmark
	now     func() time.Time
}

// NewBookmarkRepository returns an in-memory implementation.
func NewBookmarkRepository() BookmarkRepository {
	return &bookmarkRepository{
		byOwner: make(map[string][]domain.Bookmark),
		now:     time.Now,
	}
}

// Create assigns a ULID to bookmark and stores it.
func (r *bookmarkRepository) Create(_ context.Context, bookmark *domain.Bookmark) error {
	id, err := ulid.New(ulid.Timestamp(r.now()), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate bookmark id: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if indexOf(r.byOwner[bookmark.Owner], bookmark.Name) >= 0 {
		return ErrConflict
	}
	bookmark.ID = id.String()
	r.byOwner[bookmark.Owner] = append(r.byOwner[bookmark.Owner], *bookmark)
	return nil
}

func (r *bookmarkRepository) GetByName(_ context.Context, owner, name string) (*domain.Bookmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.byOwner[owner]
	i := indexOf(list, name)
	if i < 0 {
		return nil, ErrNotFound
	}
	b := list[i]
	return &b, nil
}

func (r *bookmarkRepository) ListByOwner(_ context.Context, owner string) ([]domain.Bookmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Bookmark{}, r.byOwner[owner]...), nil
}

func (r *bookmarkRepository) ListPublic(_ context.Context) ([]domain.Bookmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Bookmark
	for _, list := range r.byOwner {
		for _, b := range list {
			if !b.Private {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

// Update replaces the bookmark stored under name. bookmark.Name may differ from name, in which
// case the new name must be free.
func (r *bookmarkRepository) Update(_ context.Context, name string, bookmark *domain.Bookmark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byOwner[bookmark.Owner]
	i := indexOf(list, name)
	if i < 0 {
		return ErrNotFound
	}
	if bookmark.Name != name && indexOf(list, bookmark.Name) >= 0 {
		return ErrConflict
	}
	bookmark.ID = list[i].ID
	bookmark.CreatedAt = list[i].CreatedAt
	list[i] = *bookmark
	return nil
}

func (r *bookmarkRepository) Delete(_ context.Context, owner, name string) (*domain.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byOwner[owner]
	i := indexOf(list, name)
	if i < 0 {
		return nil, ErrNotFound
	}
	removed := list[i]
	list = append(list[:i], list[i+1:]...)
	if len(list) == 0 {
		delete(r.byOwner, owner)
	} else {
		r.byOwner[owner] = list
	}
	return &removed, nil
}

func (r *bookmarkRepository) DeleteByOwner(_ context.Context, owner string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.byOwner[owner])
	delete(r.byOwner, owner)
	return n, nil
}

func indexOf(list []domain.Bookmark, name string) int {
	for i := range list {
		if list[i].Name == name {
			return i
		}
	}
	return -1
}
