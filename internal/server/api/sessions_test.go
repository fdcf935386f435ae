package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mhaile-revolts/cronosFacial/internal/analysis"
	"github.com/mhaile-revolts/cronosFacial/internal/store"
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

// fakeController is a store-backed SessionController for handler tests.
type fakeController struct {
	store    *store.Store
	activeID string
	startErr error

	interactions []*analysis.Interaction
}

func (f *fakeController) StartSession() (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	id := uuid.New().String()
	if err := f.store.Sessions().Create(&store.Session{ID: id, StartedAt: time.Now()}); err != nil {
		return "", err
	}
	f.activeID = id
	return id, nil
}

func (f *fakeController) StopSession(ctx context.Context) (*store.Session, error) {
	id := f.activeID
	f.activeID = ""
	if err := f.store.Sessions().Finish(id, time.Now(), 0); err != nil {
		return nil, err
	}
	return f.store.Sessions().GetByID(id)
}

func (f *fakeController) ActiveSessionID() string {
	return f.activeID
}

func (f *fakeController) RecordInteraction(ctx context.Context, in *analysis.Interaction) error {
	f.interactions = append(f.interactions, in)
	return f.store.Interactions().Create(&store.Interaction{
		SessionID:   f.activeID,
		TimestampMs: in.Timestamp.UnixMilli(),
		Type:        in.Type,
		DurationMs:  in.DurationMs,
	})
}

func TestSessionsHandler_StartStop(t *testing.T) {
	s := newTestStore(t)
	ctrl := &fakeController{store: s}
	h := NewSessionsHandler(s, ctrl)

	// Start a session
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var started sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !started.Active {
		t.Error("started session should be active")
	}

	// Stop it
	req = httptest.NewRequest(http.MethodPost, "/api/sessions/"+started.ID+"/stop", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var stopped sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stopped); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if stopped.Active {
		t.Error("stopped session should not be active")
	}
	if stopped.EndedAt == "" {
		t.Error("stopped session should have ended_at set")
	}
}

func TestSessionsHandler_Stop_NotActive(t *testing.T) {
	s := newTestStore(t)
	ctrl := &fakeController{store: s}
	h := NewSessionsHandler(s, ctrl)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/some-id/stop", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestSessionsHandler_List(t *testing.T) {
	s := newTestStore(t)
	h := NewSessionsHandler(s, &fakeController{store: s})

	for i := 0; i < 3; i++ {
		sess := &store.Session{ID: uuid.New().String(), StartedAt: time.Now()}
		if err := s.Sessions().Create(sess); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp listSessionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Sessions) != 3 {
		t.Errorf("expected 3 sessions, got %d", len(resp.Sessions))
	}
}

func TestSessionsHandler_Get_WithFrames(t *testing.T) {
	s := newTestStore(t)
	h := NewSessionsHandler(s, &fakeController{store: s})

	sess := &store.Session{ID: "session-1", StartedAt: time.Now()}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	frames := []store.Frame{
		{TimestampMs: 100, Emotion: "Happy", Gaze: "center", Engagement: "High"},
		{TimestampMs: 200, Emotion: "Happy", Gaze: "left", Engagement: "Medium"},
	}
	if err := s.Frames().CreateBatch("session-1", frames); err != nil {
		t.Fatalf("failed to create frames: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/session-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Frames) != 2 {
		t.Errorf("expected 2 frames, got %d", len(resp.Frames))
	}
	if resp.FrameCount != 2 {
		t.Errorf("frame_count = %d, want 2", resp.FrameCount)
	}
}

func TestSessionsHandler_Get_NotFound(t *testing.T) {
	s := newTestStore(t)
	h := NewSessionsHandler(s, &fakeController{store: s})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSessionsHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	h := NewSessionsHandler(s, &fakeController{store: s})

	sess := &store.Session{ID: "session-1", StartedAt: time.Now()}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/session-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	if _, err := s.Sessions().GetByID("session-1"); err != store.ErrNotFound {
		t.Errorf("session should be deleted, got: %v", err)
	}
}

func TestSessionsHandler_Delete_ActiveSessionRejected(t *testing.T) {
	s := newTestStore(t)
	ctrl := &fakeController{store: s}
	h := NewSessionsHandler(s, ctrl)

	id, err := ctrl.StartSession()
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestSessionsHandler_MethodNotAllowed(t *testing.T) {
	s := newTestStore(t)
	h := NewSessionsHandler(s, &fakeController{store: s})

	req := httptest.NewRequest(http.MethodPut, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
