package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vitrinalab/vitrina/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newDraftService(t *testing.T) *DraftService {
	t.Helper()
	db := setupTestDB(t)
	nop := zap.NewNop()
	return NewDraftService(db, nop, NewEventService(db, nop))
}

func sampleSubmission() DraftSubmission {
	return DraftSubmission{
		UserID: "user-1",
		Title:  "Lanzamiento panadería",
		City:   "Arica",
		Content: models.DraftContent{
			BusinessName: "Pan de Barrio",
			Offering:     "Artisan bread baked daily",
		},
		Platforms: []models.Platform{models.PlatformFacebook, models.PlatformMarketplace},
		PlatformContent: models.ContentMap{
			models.PlatformFacebook:    "A warm story about bread",
			models.PlatformMarketplace: "Artisan bread baked daily",
		},
		MediaURLs: []string{"https://cdn.example.com/pan.jpg"},
	}
}

func TestSubmitWithoutScheduleIsSentToMake(t *testing.T) {
	s := newDraftService(t)

	draft, err := s.Submit(sampleSubmission())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if draft.Status != models.StatusSentToMake {
		t.Fatalf("expected sent-to-make, got %s", draft.Status)
	}
	if draft.ID == "" {
		t.Fatal("draft must get an id")
	}

	stored, err := s.Get(draft.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.PlatformContent[models.PlatformMarketplace] != "Artisan bread baked daily" {
		t.Fatalf("content map did not survive storage: %v", stored.PlatformContent)
	}
	if len(stored.Platforms) != 2 {
		t.Fatalf("platforms did not survive storage: %v", stored.Platforms)
	}
}

func TestSubmitWithScheduleIsScheduled(t *testing.T) {
	s := newDraftService(t)

	at := time.Now().Add(2 * time.Hour)
	sub := sampleSubmission()
	sub.ScheduledAt = &at

	draft, err := s.Submit(sub)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if draft.Status != models.StatusScheduled {
		t.Fatalf("expected scheduled, got %s", draft.Status)
	}
}

func TestSubmitRequiresPlatforms(t *testing.T) {
	s := newDraftService(t)

	sub := sampleSubmission()
	sub.Platforms = nil
	if _, err := s.Submit(sub); err == nil {
		t.Fatal("expected an error for empty platform set")
	}
}

func TestListDueReturnsOnlyDueScheduled(t *testing.T) {
	s := newDraftService(t)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	due := sampleSubmission()
	due.ScheduledAt = &past
	dueDraft, err := s.Submit(due)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	notDue := sampleSubmission()
	notDue.ScheduledAt = &future
	if _, err := s.Submit(notDue); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	immediate := sampleSubmission()
	if _, err := s.Submit(immediate); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	drafts, err := s.ListDue(time.Now())
	if err != nil {
		t.Fatalf("ListDue failed: %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != dueDraft.ID {
		t.Fatalf("expected exactly the past-scheduled draft, got %d drafts", len(drafts))
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	s := newDraftService(t)

	draft, err := s.Submit(sampleSubmission())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// sent-to-make -> processing -> published is the happy pipeline path.
	if _, err := s.UpdateStatus(draft.ID, models.StatusProcessing, ""); err != nil {
		t.Fatalf("sent-to-make -> processing rejected: %v", err)
	}
	if _, err := s.UpdateStatus(draft.ID, models.StatusPublished, ""); err != nil {
		t.Fatalf("processing -> published rejected: %v", err)
	}

	// Published is terminal.
	if _, err := s.UpdateStatus(draft.ID, models.StatusProcessing, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateStatusToError(t *testing.T) {
	s := newDraftService(t)

	draft, err := s.Submit(sampleSubmission())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	updated, err := s.UpdateStatus(draft.ID, models.StatusError, "webhook rejected payload")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != models.StatusError || updated.StatusMessage == "" {
		t.Fatalf("error state not recorded: %+v", updated)
	}
}

func TestMarkDispatchedOnlyFromScheduled(t *testing.T) {
	s := newDraftService(t)

	at := time.Now().Add(-time.Minute)
	sub := sampleSubmission()
	sub.ScheduledAt = &at
	scheduled, err := s.Submit(sub)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := s.MarkDispatched(scheduled.ID, time.Now()); err != nil {
		t.Fatalf("MarkDispatched failed: %v", err)
	}
	stored, err := s.Get(scheduled.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Status != models.StatusSentToMake || stored.DispatchedAt == nil {
		t.Fatalf("dispatch not recorded: %+v", stored)
	}

	// A second dispatch attempt finds no scheduled row.
	if err := s.MarkDispatched(scheduled.ID, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestListByUserIsScoped(t *testing.T) {
	s := newDraftService(t)

	mine := sampleSubmission()
	if _, err := s.Submit(mine); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	theirs := sampleSubmission()
	theirs.UserID = "user-2"
	if _, err := s.Submit(theirs); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	drafts, err := s.ListByUser("user-1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(drafts) != 1 || drafts[0].UserID != "user-1" {
		t.Fatalf("expected only user-1 drafts, got %d", len(drafts))
	}

	all, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 drafts in admin listing, got %d", len(all))
	}
}
