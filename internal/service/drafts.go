package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitrinalab/vitrina/internal/models"
)

var (
	ErrDraftNotFound     = errors.New("draft not found")
	ErrInvalidTransition = errors.New("invalid draft status transition")
)

// DraftSubmission is everything the user hands over on submit.
type DraftSubmission struct {
	UserID          string
	Title           string
	City            string
	Content         models.DraftContent
	Platforms       []models.Platform
	PlatformContent models.ContentMap
	MediaURLs       []string
	ScheduledAt     *time.Time
}

// DraftService persists submitted drafts. Drafts are append-only: after
// submission only the dispatcher and the pipeline callback touch the status.
type DraftService struct {
	db     *gorm.DB
	logger *zap.Logger
	events *EventService
}

func NewDraftService(db *gorm.DB, logger *zap.Logger, events *EventService) *DraftService {
	return &DraftService{
		db:     db,
		logger: logger,
		events: events,
	}
}

// Submit writes exactly one new draft record. The status is scheduled iff a
// schedule timestamp was supplied, otherwise the draft goes straight to the
// production pipeline as sent-to-make.
func (s *DraftService) Submit(sub DraftSubmission) (*models.Draft, error) {
	if len(sub.Platforms) == 0 {
		return nil, fmt.Errorf("draft must target at least one platform")
	}

	status := models.StatusSentToMake
	if sub.ScheduledAt != nil {
		status = models.StatusScheduled
	}

	draft := &models.Draft{
		ID:              uuid.NewString(),
		UserID:          sub.UserID,
		Title:           sub.Title,
		City:            sub.City,
		Content:         sub.Content,
		Platforms:       models.PlatformList(sub.Platforms),
		PlatformContent: sub.PlatformContent,
		MediaURLs:       models.StringArray(sub.MediaURLs),
		Status:          status,
		ScheduledAt:     sub.ScheduledAt,
	}

	if err := s.db.Create(draft).Error; err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	s.logger.Info("draft submitted",
		zap.String("draft_id", draft.ID),
		zap.String("user_id", draft.UserID),
		zap.String("status", string(draft.Status)))

	return draft, nil
}

func (s *DraftService) Get(id string) (*models.Draft, error) {
	var draft models.Draft
	if err := s.db.First(&draft, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return &draft, nil
}

// ListByUser returns a user's drafts, newest first.
func (s *DraftService) ListByUser(userID string) ([]*models.Draft, error) {
	var drafts []*models.Draft
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&drafts).Error; err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// ListAll returns every draft, newest first. Admin surface only.
func (s *DraftService) ListAll() ([]*models.Draft, error) {
	var drafts []*models.Draft
	if err := s.db.Order("created_at DESC").Find(&drafts).Error; err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// ListDue returns scheduled drafts whose schedule time has passed.
func (s *DraftService) ListDue(now time.Time) ([]*models.Draft, error) {
	var drafts []*models.Draft
	err := s.db.
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.StatusScheduled, now).
		Order("scheduled_at ASC").
		Find(&drafts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due drafts: %w", err)
	}
	return drafts, nil
}

// allowedTransitions maps the statuses the downstream pipeline may move a
// draft between. Submission statuses (draft/scheduled) are never re-entered.
var allowedTransitions = map[models.DraftStatus][]models.DraftStatus{
	models.StatusScheduled:  {models.StatusSentToMake, models.StatusError},
	models.StatusSentToMake: {models.StatusProcessing, models.StatusPublished, models.StatusError},
	models.StatusProcessing: {models.StatusPublished, models.StatusError},
}

// UpdateStatus applies a pipeline status change, rejecting transitions the
// lifecycle does not allow.
func (s *DraftService) UpdateStatus(id string, status models.DraftStatus, message string) (*models.Draft, error) {
	draft, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(draft.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, draft.Status, status)
	}

	draft.Status = status
	draft.StatusMessage = message
	if err := s.db.Save(draft).Error; err != nil {
		return nil, fmt.Errorf("failed to update draft status: %w", err)
	}

	level := models.EventLevelInfo
	if status == models.StatusError {
		level = models.EventLevelError
	}
	s.events.Record(level, "pipeline", "draft status changed", message,
		WithDraft(draft.ID),
		WithContext(map[string]interface{}{"status": status}))

	return draft, nil
}

// MarkDispatched moves a draft to sent-to-make after a successful webhook
// delivery.
func (s *DraftService) MarkDispatched(id string, at time.Time) error {
	result := s.db.Model(&models.Draft{}).
		Where("id = ? AND status = ?", id, models.StatusScheduled).
		Updates(map[string]interface{}{
			"status":        models.StatusSentToMake,
			"dispatched_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark draft dispatched: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func transitionAllowed(from, to models.DraftStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
