package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/linkshelf/bookmark-service/internal/domain"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("record already exists")
)

// UserRepository defines storage access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Delete(ctx context.Context, username string) error
	Count(ctx context.Context) (int, error)
}

type userRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserRepository returns an in-memory implementation.
func NewUserRepository() UserRepository {
	return &userRepository{users: make(map[string]domain.User)}
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return ErrConflict
	}
	r.users[user.Username] = *user
	return nil
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; !ok {
		return ErrNotFound
	}
	r.users[user.Username] = *user
	return nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; !ok {
		return ErrNotFound
	}
	delete(r.users, username)
	return nil
}

func (r *userRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
