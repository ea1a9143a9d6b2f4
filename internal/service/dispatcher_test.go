package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/config"
	"github.com/vitrinalab/vitrina/internal/models"
)

func newDispatcher(t *testing.T, webhookURL string) (*Dispatcher, *DraftService) {
	t.Helper()
	db := setupTestDB(t)
	nop := zap.NewNop()
	events := NewEventService(db, nop)
	drafts := NewDraftService(db, nop, events)
	d := NewDispatcher(&config.DispatcherConfig{WebhookURL: webhookURL, Timeout: "5s"}, drafts, events, nop)
	return d, drafts
}

func submitScheduled(t *testing.T, drafts *DraftService, at time.Time) *models.Draft {
	t.Helper()
	sub := sampleSubmission()
	sub.ScheduledAt = &at
	draft, err := drafts.Submit(sub)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	return draft
}

func TestDispatchDeliversPayload(t *testing.T) {
	var received dispatchPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d, drafts := newDispatcher(t, srv.URL)
	draft := submitScheduled(t, drafts, time.Now().Add(-time.Minute))

	if err := d.Dispatch(context.Background(), draft); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if received.DraftID != draft.ID || received.Title != draft.Title {
		t.Fatalf("webhook received wrong payload: %+v", received)
	}
	if received.PlatformContent[models.PlatformMarketplace] == "" {
		t.Fatal("platform content missing from payload")
	}

	stored, err := drafts.Get(draft.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Status != models.StatusSentToMake || stored.DispatchedAt == nil {
		t.Fatalf("dispatch not recorded: %+v", stored)
	}
}

func TestDispatchFailureMarksError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "scenario is offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d, drafts := newDispatcher(t, srv.URL)
	draft := submitScheduled(t, drafts, time.Now().Add(-time.Minute))

	if err := d.Dispatch(context.Background(), draft); err == nil {
		t.Fatal("expected delivery error")
	}

	stored, err := drafts.Get(draft.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Status != models.StatusError {
		t.Fatalf("expected error status, got %s", stored.Status)
	}
	if stored.StatusMessage == "" {
		t.Fatal("failure reason missing from draft")
	}
}

func TestDispatchDueIsolatesFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			http.Error(w, "first one fails", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d, drafts := newDispatcher(t, srv.URL)
	first := submitScheduled(t, drafts, time.Now().Add(-2*time.Minute))
	second := submitScheduled(t, drafts, time.Now().Add(-time.Minute))

	if err := d.DispatchDue(context.Background(), time.Now()); err != nil {
		t.Fatalf("DispatchDue failed: %v", err)
	}
	if hits != 2 {
		t.Fatalf("expected both drafts attempted, got %d hits", hits)
	}

	firstStored, _ := drafts.Get(first.ID)
	secondStored, _ := drafts.Get(second.ID)
	if firstStored.Status != models.StatusError {
		t.Fatalf("failed draft should be errored, got %s", firstStored.Status)
	}
	if secondStored.Status != models.StatusSentToMake {
		t.Fatalf("successful draft should be sent-to-make, got %s", secondStored.Status)
	}
}
