package uploader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFacialClient_PostStream(t *testing.T) {
	var gotPath string
	var gotContentType string
	var gotRecord FrameRecord

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotRecord); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewFacialClient(srv.URL, 5*time.Second)

	rec := &FrameRecord{
		SessionID:   "session-1",
		TimestampMs: 1234,
		Emotion:     "Happy",
		Gaze:        "center",
		Engagement:  "High",
		Score:       0.9,
	}
	if err := c.PostStream(context.Background(), rec); err != nil {
		t.Fatalf("PostStream failed: %v", err)
	}

	if gotPath != "/facial-analysis/stream" {
		t.Errorf("path = %q, want /facial-analysis/stream", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotRecord.Engagement != "High" {
		t.Errorf("engagement = %q, want High", gotRecord.Engagement)
	}
	if gotRecord.SessionID != "session-1" {
		t.Errorf("session_id = %q, want session-1", gotRecord.SessionID)
	}
}

func TestFacialClient_PostBatch(t *testing.T) {
	var gotPath string
	var gotBatch SessionBatch

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBatch); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewFacialClient(srv.URL+"/", 5*time.Second) // trailing slash is trimmed

	batch := &SessionBatch{
		SessionID:  "session-1",
		StartedAt:  time.Now().Add(-time.Minute),
		EndedAt:    time.Now(),
		FrameCount: 2,
		Frames: []FrameRecord{
			{SessionID: "session-1", TimestampMs: 100, Emotion: "Happy", Gaze: "center", Engagement: "High", Score: 0.9},
			{SessionID: "session-1", TimestampMs: 300, Emotion: "Sad", Gaze: "down", Engagement: "Low", Score: 0.3},
		},
	}
	if err := c.PostBatch(context.Background(), batch); err != nil {
		t.Fatalf("PostBatch failed: %v", err)
	}

	if gotPath != "/facial-analysis/batch" {
		t.Errorf("path = %q, want /facial-analysis/batch", gotPath)
	}
	if len(gotBatch.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(gotBatch.Frames))
	}
	if gotBatch.Frames[1].Engagement != "Low" {
		t.Errorf("second frame engagement = %q, want Low", gotBatch.Frames[1].Engagement)
	}
}

func TestFacialClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewFacialClient(srv.URL, 5*time.Second)

	err := c.PostStream(context.Background(), &FrameRecord{SessionID: "s"})
	if err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestFacialClient_NoRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewFacialClient(srv.URL, 5*time.Second)

	if err := c.PostStream(context.Background(), &FrameRecord{}); err == nil {
		t.Error("expected error for 503 response")
	}

	// A failed upload is reported, never retried
	if calls != 1 {
		t.Errorf("expected exactly 1 request, got %d", calls)
	}
}

func TestFacialClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewFacialClient(srv.URL, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.PostStream(ctx, &FrameRecord{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestAnalyticsClient_PostInteraction(t *testing.T) {
	var gotPath string
	var gotEvent InteractionEvent

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotEvent); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewAnalyticsClient(srv.URL, 5*time.Second)

	ev := &InteractionEvent{
		SessionID:   "session-1",
		TimestampMs: 5000,
		Type:        "tap",
		DurationMs:  120,
	}
	if err := c.PostInteraction(context.Background(), ev); err != nil {
		t.Fatalf("PostInteraction failed: %v", err)
	}

	if gotPath != "/events/interaction" {
		t.Errorf("path = %q, want /events/interaction", gotPath)
	}
	if gotEvent.Type != "tap" {
		t.Errorf("type = %q, want tap", gotEvent.Type)
	}
	if gotEvent.DurationMs != 120 {
		t.Errorf("duration_ms = %d, want 120", gotEvent.DurationMs)
	}
}

func TestAnalyticsClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewAnalyticsClient(srv.URL, 5*time.Second)

	if err := c.PostInteraction(context.Background(), &InteractionEvent{Type: "tap"}); err == nil {
		t.Error("expected error for 400 response")
	}
}
