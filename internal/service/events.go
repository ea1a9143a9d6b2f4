package service

import (
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitrinalab/vitrina/internal/models"
)

type EventService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewEventService(db *gorm.DB, logger *zap.Logger) *EventService {
	return &EventService{
		db:     db,
		logger: logger,
	}
}

// Record persists one operational event. Failures to write the log are
// reported through the process logger but never propagated; event logging
// must not break the operation being logged.
func (s *EventService) Record(level, source, title, message string, options ...EventOption) {
	event := &models.EventLog{
		Level:   level,
		Source:  source,
		Title:   title,
		Message: message,
	}

	for _, option := range options {
		option(event)
	}

	if err := s.db.Create(event).Error; err != nil {
		s.logger.Error("failed to record event",
			zap.String("source", source),
			zap.String("title", title),
			zap.Error(err))
	}
}

// Recent returns the latest events, newest first.
func (s *EventService) Recent(limit int) ([]*models.EventLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []*models.EventLog
	err := s.db.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// EventOption decorates an event before it is written.
type EventOption func(*models.EventLog)

func WithPlatform(platform models.Platform) EventOption {
	return func(e *models.EventLog) {
		e.Platform = platform.String()
	}
}

func WithDraft(draftID string) EventOption {
	return func(e *models.EventLog) {
		e.DraftID = &draftID
	}
}

func WithContext(context map[string]interface{}) EventOption {
	return func(e *models.EventLog) {
		if contextBytes, err := json.Marshal(context); err == nil {
			e.Context = string(contextBytes)
		}
	}
}
