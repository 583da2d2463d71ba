package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/linkshelf/bookmark-service/internal/events"
)

// AuditService writes one structured log line per domain event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionCreated, a.handleSession)
	a.dispatcher.Subscribe(events.EventSessionRevoked, a.handleSession)
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleUser)
	a.dispatcher.Subscribe(events.EventUserDeleted, a.handleUser)
	a.dispatcher.Subscribe(events.EventBookmarkCreated, a.handleBookmark)
	a.dispatcher.Subscribe(events.EventBookmarkUpdated, a.handleBookmark)
	a.dispatcher.Subscribe(events.EventBookmarkDeleted, a.handleBookmark)
}

func (a *AuditService) handleSession(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if p, ok := event.Payload.(events.SessionPayload); ok {
		fields = append(fields, zap.String("session_id", p.SessionID))
		if p.ExpiresAt != nil {
			fields = append(fields, zap.Time("expires_at", *p.ExpiresAt))
		}
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *AuditService) handleUser(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), a.baseFields(event)...)
	return nil
}

func (a *AuditService) handleBookmark(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if p, ok := event.Payload.(events.BookmarkPayload); ok {
		fields = append(fields,
			zap.String("bookmark_id", p.BookmarkID),
			zap.String("name", p.Name),
			zap.Bool("private", p.Private))
	}
	a.logger.Debug(string(event.Type), fields...)
	return nil
}

func (a *AuditService) baseFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("username", event.Username),
		zap.Time("at", event.Timestamp),
	}
}
