package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/linkshelf/bookmark-service/internal/auth"
	"github.com/linkshelf/bookmark-service/internal/domain"
	"github.com/linkshelf/bookmark-service/internal/events"
	"github.com/linkshelf/bookmark-service/internal/repository"
	apperrors "github.com/linkshelf/bookmark-service/pkg/util/errorutil"
)

// Reasons reported in error details so clients can tell failures apart.
const (
	ReasonInvalidData     = "INVALID_DATA"
	ReasonUsernameExists  = "USERNAME_EXISTS"
	ReasonPasswordTooLong = "PASSWORD_TOO_LONG"
	ReasonLoggedIn        = "LOGGED_IN"
	ReasonNoSession       = "NO_SESSION"
	ReasonBookmarkExists  = "BOOKMARK_EXISTS"
	ReasonInvalidURI      = "INVALID_URI"
	ReasonInvalidAccess   = "INVALID_ACCESS"
	ReasonNameTooLong     = "NAME_TOO_LONG"
)

const (
	errInvalidCredentials  = "invalid credentials"
	errNotAuthorized       = "not authorized"
	dummyPasswordForTiming = "bookmark-service-timing-equalizer"
)

// SessionManager is the part of auth.SessionManager the services depend on.
type SessionManager interface {
	auth.Authorizer
	CreateSession(username string) (auth.Status, string, error)
	RevokeSession(username, token string) auth.Status
	IsActive(username string) bool
	Session(username string) (auth.SessionRecord, bool)
}

// UserDependencies encapsulates collaborators of the user service.
type UserDependencies struct {
	Users      repository.UserRepository
	Sessions   SessionManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	BcryptCost int
	Now        func() time.Time
}

// UserService manages accounts and turns verified credentials into sessions.
type UserService struct {
	users      repository.UserRepository
	sessions   SessionManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
	// dummyHash is compared against for unknown usernames so both login failures cost one bcrypt run.
	dummyHash string
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) (*UserService, error) {
	if deps.Users == nil || deps.Sessions == nil {
		return nil, errors.New("user service requires a repository and a session manager")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	dummy, err := auth.HashPassword(dummyPasswordForTiming, deps.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &UserService{
		users:      deps.Users,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: deps.BcryptCost,
		now:        now,
		dummyHash:  dummy,
	}, nil
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, invalidData("username and password required")
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, usernameExists()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperrors.NewValidationError("password too long", reason(ReasonPasswordTooLong))
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now().UTC()
	user := &domain.User{Username: username, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, usernameExists()
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{Type: events.EventUserRegistered, Username: username})
	return user, nil
}

// Login verifies credentials and opens the user's session. The returned expiry is zero when
// sessions live until revoked.
func (s *UserService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	if username == "" || password == "" {
		return nil, "", time.Time{}, invalidData("username and password required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		_ = auth.ComparePassword(s.dummyHash, password)
		return nil, "", time.Time{}, apperrors.NewUnauthorized(errInvalidCredentials)
	case err != nil:
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized(errInvalidCredentials)
	}

	if s.sessions.IsActive(username) {
		return nil, "", time.Time{}, loggedIn()
	}
	status, token, err := s.sessions.CreateSession(username)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if status == auth.StatusAlreadyExists {
		return nil, "", time.Time{}, loggedIn()
	}

	// The account may have been deleted while the session was being created.
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		s.sessions.RevokeSession(username, token)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized(errInvalidCredentials)
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	var expiresAt time.Time
	if rec, ok := s.sessions.Session(username); ok {
		expiresAt = rec.ExpiresAt
	}
	return user, token, expiresAt, nil
}

// Logout ends the session of username; token must be that session's token.
func (s *UserService) Logout(ctx context.Context, username, token string) error {
	if username == "" || token == "" {
		return invalidData("username and token required")
	}
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.NewInternalError(err)
	}

	switch status := s.sessions.RevokeSession(username, token); status {
	case auth.StatusRemoved:
		return nil
	case auth.StatusUnauthorized:
		return apperrors.NewUnauthorized(errNotAuthorized)
	case auth.StatusNoSession:
		return apperrors.NewNotFound("session", reason(ReasonNoSession))
	default:
		return apperrors.NewInternalError(fmt.Errorf("unexpected revoke status %s", status))
	}
}

// Me returns the account bound to token.
func (s *UserService) Me(ctx context.Context, token string) (*domain.User, error) {
	username, err := s.authorize(token)
	if err != nil {
		return nil, err
	}
	return s.lookup(ctx, username)
}

// ChangePassword re-verifies the current password before storing the new one. The session stays open.
func (s *UserService) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	username, err := s.authorize(token)
	if err != nil {
		return err
	}
	if currentPassword == "" || newPassword == "" {
		return invalidData("current and new password required")
	}

	user, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized(errInvalidCredentials)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return apperrors.NewValidationError("password too long", reason(ReasonPasswordTooLong))
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	user.PasswordHash = hash
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Delete removes the account of username, then its session. Only the account owner may delete
// it; user_deleted purges owned data.
func (s *UserService) Delete(ctx context.Context, username, token string) error {
	caller, err := s.authorize(token)
	if err != nil {
		return err
	}
	if caller != username {
		return apperrors.NewForbidden("cannot delete another user")
	}

	if err := s.users.Delete(ctx, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.NewInternalError(err)
	}
	if status := s.sessions.RevokeSession(username, token); status != auth.StatusRemoved {
		s.logger.Warn("session already gone at account deletion",
			zap.String("username", username), zap.String("status", status.String()))
	}

	s.publish(ctx, events.Event{Type: events.EventUserDeleted, Username: username})
	return nil
}

func (s *UserService) authorize(token string) (string, error) {
	username := s.sessions.Authorize(token)
	if username == "" {
		return "", apperrors.NewUnauthorized(errNotAuthorized)
	}
	return username, nil
}

func (s *UserService) lookup(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("user", nil)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func invalidData(message string) error {
	return apperrors.NewValidationError(message, reason(ReasonInvalidData))
}

func usernameExists() error {
	return apperrors.NewConflict("username already exists", reason(ReasonUsernameExists))
}

func loggedIn() error {
	return apperrors.NewConflict("session already active", reason(ReasonLoggedIn))
}

func reason(r string) map[string]any {
	return map[string]any{"reason": r}
}
