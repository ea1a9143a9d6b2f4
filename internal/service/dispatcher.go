package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/config"
	"github.com/vitrinalab/vitrina/internal/models"
)

// dispatchPayload is the JSON body delivered to the production webhook.
type dispatchPayload struct {
	DraftID         string              `json:"draft_id"`
	UserID          string              `json:"user_id"`
	Title           string              `json:"title"`
	City            string              `json:"city"`
	Platforms       models.PlatformList `json:"platforms"`
	PlatformContent models.ContentMap   `json:"platform_content"`
	MediaURLs       models.StringArray  `json:"media_urls"`
	ScheduledAt     *time.Time          `json:"scheduled_at"`
}

// Dispatcher hands due drafts over to the downstream production pipeline
// (a Make-style automation webhook). Delivery failures put the draft into
// the error state; the user re-submits to retry, nothing retries here.
type Dispatcher struct {
	config *config.DispatcherConfig
	client *http.Client
	drafts *DraftService
	events *EventService
	logger *zap.Logger
}

func NewDispatcher(cfg *config.DispatcherConfig, drafts *DraftService, events *EventService, logger *zap.Logger) *Dispatcher {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		config: cfg,
		client: &http.Client{Timeout: timeout},
		drafts: drafts,
		events: events,
		logger: logger,
	}
}

// DispatchDue delivers every scheduled draft whose time has come. Failures
// are isolated per draft.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time) error {
	due, err := d.drafts.ListDue(now)
	if err != nil {
		return err
	}

	for _, draft := range due {
		if err := d.Dispatch(ctx, draft); err != nil {
			d.logger.Error("draft dispatch failed",
				zap.String("draft_id", draft.ID),
				zap.Error(err))
		}
	}

	return nil
}

// Dispatch delivers one draft to the webhook and records the outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, draft *models.Draft) error {
	if d.config.WebhookURL == "" {
		return fmt.Errorf("dispatcher webhook URL is not configured")
	}

	payload := dispatchPayload{
		DraftID:         draft.ID,
		UserID:          draft.UserID,
		Title:           draft.Title,
		City:            draft.City,
		Platforms:       draft.Platforms,
		PlatformContent: draft.PlatformContent,
		MediaURLs:       draft.MediaURLs,
		ScheduledAt:     draft.ScheduledAt,
	}

	if err := d.deliver(ctx, payload); err != nil {
		d.events.Record(models.EventLevelError, "dispatcher", "webhook delivery failed", err.Error(),
			WithDraft(draft.ID))
		if _, statusErr := d.drafts.UpdateStatus(draft.ID, models.StatusError, err.Error()); statusErr != nil {
			d.logger.Error("failed to mark draft errored",
				zap.String("draft_id", draft.ID),
				zap.Error(statusErr))
		}
		return err
	}

	if err := d.drafts.MarkDispatched(draft.ID, time.Now()); err != nil {
		return err
	}

	d.events.Record(models.EventLevelInfo, "dispatcher", "draft dispatched", "",
		WithDraft(draft.ID))
	d.logger.Info("draft dispatched",
		zap.String("draft_id", draft.ID))

	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, payload dispatchPayload) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
