package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mhaile-revolts/cronosFacial/internal/analysis"
	"github.com/mhaile-revolts/cronosFacial/internal/detector"
	"github.com/mhaile-revolts/cronosFacial/internal/session"
	"github.com/mhaile-revolts/cronosFacial/internal/store"
	"github.com/mhaile-revolts/cronosFacial/internal/uploader"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "cronos-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestApp_New_FallsBackToStub(t *testing.T) {
	a := New(Config{Store: newTestStore(t)})

	// Without the face mesh service installed the app runs on the stub
	if _, ok := a.Detector().(*detector.StubDetector); !ok {
		if _, ok := a.Detector().(*detector.FaceMeshDetector); !ok {
			t.Errorf("unexpected detector type %T", a.Detector())
		}
	}
}

func TestApp_EnableDisable(t *testing.T) {
	a := New(Config{Store: newTestStore(t)})

	if a.IsEnabled() {
		t.Error("app should start disabled")
	}

	a.SetEnabled(true)
	if !a.IsEnabled() {
		t.Error("app should be enabled after SetEnabled(true)")
	}

	a.SetEnabled(false)
	if a.IsEnabled() {
		t.Error("app should be disabled after SetEnabled(false)")
	}
}

func TestApp_AnalyzeFrame_RecordsAndBroadcasts(t *testing.T) {
	s := newTestStore(t)
	a := New(Config{Store: s})

	id, err := a.Recorder().Start()
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	var broadcast []session.Record
	a.RegisterRecordCallback(func(rec session.Record) {
		broadcast = append(broadcast, rec)
	})

	landmarks := detector.NeutralFaceLandmarks()
	for i := 0; i < 4; i++ {
		a.analyzeFrame(landmarks)
	}

	records := a.Recorder().Snapshot()
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if len(broadcast) != 4 {
		t.Fatalf("expected 4 broadcast records, got %d", len(broadcast))
	}

	// The emotion label advances every second frame
	if records[0].Emotion != records[1].Emotion {
		t.Errorf("first two records should share an emotion: %q vs %q",
			records[0].Emotion, records[1].Emotion)
	}
	if records[1].Emotion == records[2].Emotion {
		t.Error("third record should carry the next emotion label")
	}

	// Every record carries a valid engagement state
	for i, rec := range records {
		switch rec.Engagement {
		case "High", "Medium", "Low":
		default:
			t.Errorf("record %d has invalid engagement %q", i, rec.Engagement)
		}
		if rec.Score <= 0 || rec.Score > 1 {
			t.Errorf("record %d has out-of-range score %f", i, rec.Score)
		}
	}

	done, err := a.Recorder().Stop(context.Background())
	if err != nil {
		t.Fatalf("failed to stop session: %v", err)
	}
	if done.ID != id || done.FrameCount != 4 {
		t.Errorf("finished session = %+v", done)
	}
}

func TestApp_AnalyzeFrame_ConsumesPendingInteraction(t *testing.T) {
	s := newTestStore(t)
	a := New(Config{Store: s})

	if _, err := a.Recorder().Start(); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	in := &analysis.Interaction{Timestamp: time.Now(), Type: "tap", DurationMs: 50}
	if err := a.RecordInteraction(context.Background(), in); err != nil {
		t.Fatalf("failed to record interaction: %v", err)
	}

	landmarks := detector.NeutralFaceLandmarks()

	// First frame consumes the interaction (0.2 weight bonus of 0.7 vs 0.5),
	// second frame shares the same emotion and gaze but sees no interaction,
	// so its score drops by exactly 0.2*(0.7-0.5).
	a.analyzeFrame(landmarks)
	a.analyzeFrame(landmarks)

	records := a.Recorder().Snapshot()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	diff := records[0].Score - records[1].Score
	if diff < 0.039 || diff > 0.041 {
		t.Errorf("interaction bonus = %f, want 0.04", diff)
	}
}

func TestApp_RecordInteraction_PersistsAndForwards(t *testing.T) {
	var gotEvent uploader.InteractionEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/interaction" {
			t.Errorf("path = %q, want /events/interaction", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotEvent); err != nil {
			t.Errorf("failed to decode event: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := newTestStore(t)
	a := New(Config{
		Store:     s,
		Analytics: uploader.NewAnalyticsClient(srv.URL, 5*time.Second),
	})

	id, err := a.Recorder().Start()
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	in := &analysis.Interaction{Timestamp: time.Now(), Type: "scroll", DurationMs: 800}
	if err := a.RecordInteraction(context.Background(), in); err != nil {
		t.Fatalf("failed to record interaction: %v", err)
	}

	// Persisted with the active session ID
	stored, err := s.Interactions().GetBySessionID(id)
	if err != nil {
		t.Fatalf("failed to query interactions: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored interaction, got %d", len(stored))
	}
	if stored[0].Type != "scroll" || stored[0].DurationMs != 800 {
		t.Errorf("stored interaction = %+v", stored[0])
	}

	// Forwarded to the analytics backend
	if gotEvent.Type != "scroll" || gotEvent.SessionID != id {
		t.Errorf("forwarded event = %+v", gotEvent)
	}
}

func TestApp_RecordInteraction_AnalyticsFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newTestStore(t)
	a := New(Config{
		Store:     s,
		Analytics: uploader.NewAnalyticsClient(srv.URL, 5*time.Second),
	})

	in := &analysis.Interaction{Timestamp: time.Now(), Type: "tap"}
	if err := a.RecordInteraction(context.Background(), in); err != nil {
		t.Fatalf("analytics failure should not fail RecordInteraction: %v", err)
	}

	// The signal is still stored locally
	recent, err := s.Interactions().ListRecent(1)
	if err != nil {
		t.Fatalf("failed to query interactions: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("expected 1 stored interaction, got %d", len(recent))
	}
}

func TestApp_StreamUploads(t *testing.T) {
	var streamed []uploader.FrameRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/facial-analysis/stream" {
			return
		}
		var rec uploader.FrameRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			t.Errorf("failed to decode record: %v", err)
		}
		streamed = append(streamed, rec)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := newTestStore(t)
	a := New(Config{
		Store:         s,
		Facial:        uploader.NewFacialClient(srv.URL, 5*time.Second),
		StreamUploads: true,
	})

	id, err := a.Recorder().Start()
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	a.analyzeFrame(detector.NeutralFaceLandmarks())

	if len(streamed) != 1 {
		t.Fatalf("expected 1 streamed record, got %d", len(streamed))
	}
	if streamed[0].SessionID != id {
		t.Errorf("streamed session_id = %q, want %q", streamed[0].SessionID, id)
	}
}

func TestApp_AnalyzeFrame_NoSessionDropsRecord(t *testing.T) {
	a := New(Config{Store: newTestStore(t)})

	var broadcast int
	a.RegisterRecordCallback(func(session.Record) {
		broadcast++
	})

	// Without an active session the record is dropped before callbacks
	a.analyzeFrame(detector.NeutralFaceLandmarks())

	if broadcast != 0 {
		t.Errorf("expected no broadcast without a session, got %d", broadcast)
	}
}
