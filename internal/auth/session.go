package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkshelf/bookmark-service/internal/events"
)

// Status is the outcome of a session operation.
type Status int

const (
	StatusFailed Status = iota
	StatusCreated
	StatusAlreadyExists
	StatusRemoved
	StatusUnauthorized
	StatusNoSession
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "CREATED"
	case StatusAlreadyExists:
		return "ALREADY_EXISTS"
	case StatusRemoved:
		return "REMOVED"
	case StatusUnauthorized:
		return "UNAUTHORIZED"
	case StatusNoSession:
		return "NO_SESSION"
	default:
		return "FAILED"
	}
}

// ErrEmptyUsername is returned by CreateSession for an empty username.
var ErrEmptyUsername = errors.New("username must not be empty")

const (
	opCreate    = "create"
	opAuthorize = "authorize"
	opRevoke    = "revoke"

	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"

	defaultLockStripes = 256
)

// Authorizer resolves a bearer token to the username it was issued for, or "" on any failure.
type Authorizer interface {
	Authorize(token string) string
}

// SessionMetrics receives one observation per session operation.
type SessionMetrics interface {
	RecordSessionOperation(operation, outcome string)
}

// SessionManagerDeps bundles collaborators of the session manager.
type SessionManagerDeps struct {
	Signer   *Signer
	Registry Registry
	// Optional.
	Metrics    SessionMetrics
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// SessionManager issues, validates and revokes sessions. At most one live session exists per
// username; create and revoke for the same username are serialized by a striped key lock.
type SessionManager struct {
	signer     *Signer
	registry   Registry
	metrics    SessionMetrics
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	locks      *keyLock
}

// NewSessionManager wires the manager. It is built once at start-up and shared.
func NewSessionManager(deps SessionManagerDeps) (*SessionManager, error) {
	if deps.Signer == nil {
		return nil, errors.New("session manager requires a signer")
	}
	if deps.Registry == nil {
		return nil, errors.New("session manager requires a registry")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		signer:     deps.Signer,
		registry:   deps.Registry,
		metrics:    deps.Metrics,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
		locks:      newKeyLock(defaultLockStripes),
	}, nil
}

// CreateSession starts a session for username and returns its token. An already live session
// yields StatusAlreadyExists and leaves it untouched.
func (m *SessionManager) CreateSession(username string) (Status, string, error) {
	if username == "" {
		m.record(opCreate, outcomeInvalid)
		return StatusFailed, "", ErrEmptyUsername
	}

	status, token, rec, err := m.createLocked(username)
	switch {
	case err != nil:
		m.record(opCreate, outcomeError)
		return StatusFailed, "", err
	case status == StatusAlreadyExists:
		m.record(opCreate, outcomeRejected)
		return status, "", nil
	}

	m.record(opCreate, outcomeOK)
	m.publish(events.EventSessionCreated, username, rec)
	return StatusCreated, token, nil
}

func (m *SessionManager) createLocked(username string) (Status, string, SessionRecord, error) {
	unlock := m.locks.lock(username)
	defer unlock()

	now := m.now()
	if rec, ok := m.registry.Get(username); ok && !rec.Expired(now) {
		return StatusAlreadyExists, "", SessionRecord{}, nil
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return StatusFailed, "", SessionRecord{}, fmt.Errorf("generate session id: %w", err)
	}
	sessionID := id.String()

	token, expiresAt, err := m.signer.Issue(username, sessionID, now)
	if err != nil {
		return StatusFailed, "", SessionRecord{}, err
	}

	rec := SessionRecord{SessionID: sessionID, IssuedAt: now, ExpiresAt: expiresAt}
	m.registry.Put(username, rec)
	return StatusCreated, token, rec, nil
}

// Authorize returns the username bound to token, or "" when the token is empty, forged,
// expired, or belongs to a session that is no longer current.
func (m *SessionManager) Authorize(token string) string {
	username := m.authorize(token)
	if username == "" {
		m.record(opAuthorize, outcomeRejected)
	} else {
		m.record(opAuthorize, outcomeOK)
	}
	return username
}

func (m *SessionManager) authorize(token string) string {
	if token == "" {
		return ""
	}
	claims, err := m.signer.Verify(token)
	if err != nil {
		return ""
	}
	rec, ok := m.registry.Get(claims.Subject)
	if !ok || rec.Expired(m.now()) {
		return ""
	}
	if subtle.ConstantTimeCompare([]byte(rec.SessionID), []byte(claims.SessionID)) != 1 {
		return ""
	}
	return claims.Subject
}

// RevokeSession ends the session of username. The token must authorize as that same user.
func (m *SessionManager) RevokeSession(username, token string) Status {
	status, rec := m.revokeLocked(username, token)
	switch status {
	case StatusRemoved:
		m.record(opRevoke, outcomeOK)
		m.publish(events.EventSessionRevoked, username, rec)
	case StatusUnauthorized:
		m.record(opRevoke, outcomeRejected)
	default:
		m.record(opRevoke, outcomeInvalid)
	}
	return status
}

func (m *SessionManager) revokeLocked(username, token string) (Status, SessionRecord) {
	if username == "" {
		return StatusNoSession, SessionRecord{}
	}
	unlock := m.locks.lock(username)
	defer unlock()

	rec, ok := m.registry.Get(username)
	if !ok || rec.Expired(m.now()) {
		return StatusNoSession, SessionRecord{}
	}
	if m.authorize(token) != username {
		return StatusUnauthorized, SessionRecord{}
	}
	m.registry.Remove(username)
	return StatusRemoved, rec
}

// IsActive reports whether username has a live session.
func (m *SessionManager) IsActive(username string) bool {
	_, ok := m.Session(username)
	return ok
}

// Session returns the live session record of username.
func (m *SessionManager) Session(username string) (SessionRecord, bool) {
	rec, ok := m.registry.Get(username)
	if !ok || rec.Expired(m.now()) {
		return SessionRecord{}, false
	}
	return rec, true
}

// ActiveSessions counts stored sessions, including expired ones not yet swept.
func (m *SessionManager) ActiveSessions() int {
	return m.registry.Len()
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *SessionManager) Sweep() int {
	return m.registry.Sweep(m.now())
}

func (m *SessionManager) record(operation, outcome string) {
	if m.metrics != nil {
		m.metrics.RecordSessionOperation(operation, outcome)
	}
}

func (m *SessionManager) publish(eventType events.EventType, username string, rec SessionRecord) {
	if m.dispatcher == nil {
		return
	}
	payload := events.SessionPayload{SessionID: rec.SessionID}
	if !rec.ExpiresAt.IsZero() {
		exp := rec.ExpiresAt
		payload.ExpiresAt = &exp
	}
	err := m.dispatcher.Publish(context.Background(), events.Event{
		Type:     eventType,
		Username: username,
		Payload:  payload,
	})
	if err != nil {
		m.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

// keyLock serializes work per key using a fixed array of mutexes.
type keyLock struct {
	stripes []sync.Mutex
	mask    uint64
}

func newKeyLock(stripes int) *keyLock {
	n := nextPowerOfTwo(stripes)
	return &keyLock{stripes: make([]sync.Mutex, n), mask: uint64(n - 1)}
}

func (k *keyLock) lock(key string) func() {
	mu := &k.stripes[xxhash.Sum64String(key)&k.mask]
	mu.Lock()
	return mu.Unlock
}
