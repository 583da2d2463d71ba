package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionCreated  EventType = "session_created"
	EventSessionRevoked  EventType = "session_revoked"
	EventUserRegistered  EventType = "user_registered"
	EventUserDeleted     EventType = "user_deleted"
	EventBookmarkCreated EventType = "bookmark_created"
	EventBookmarkUpdated EventType = "bookmark_updated"
	EventBookmarkDeleted EventType = "bookmark_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Username  string      `json:"username"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// SessionPayload describes a created or revoked session. The token itself is never included.
type SessionPayload struct {
	SessionID string     `json:"session_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// BookmarkPayload describes a bookmark change.
type BookmarkPayload struct {
	BookmarkID string `json:"bookmark_id"`
	Name       string `json:"name"`
	Private    bool   `json:"private"`
}
