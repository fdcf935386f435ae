// Package session tracks the lifecycle of a tracking session and buffers
// its per-frame analysis records.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mhaile-revolts/cronosFacial/internal/store"
	"github.com/mhaile-revolts/cronosFacial/internal/uploader"
)

// ErrNoSession is returned when a record arrives outside an active session.
var ErrNoSession = errors.New("no active session")

// ErrSessionActive is returned when starting a session while one is running.
var ErrSessionActive = errors.New("session already active")

// Record is one analyzed frame buffered in the active session.
type Record struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Emotion     string  `json:"emotion"`
	Gaze        string  `json:"gaze"`
	Engagement  string  `json:"engagement"`
	Score       float64 `json:"score"`
}

// Recorder owns the active tracking session. Records accumulate in memory
// while the session runs; Stop persists them and hands the batch to the
// facial analysis backend.
type Recorder struct {
	mu        sync.Mutex
	store     *store.Store
	facial    *uploader.FacialClient
	sessionID string
	startedAt time.Time
	records   []Record
	hasLast   bool
	last      Record
}

// NewRecorder creates a Recorder backed by the given store. The facial
// client may be nil, in which case batches are persisted but not uploaded.
func NewRecorder(st *store.Store, facial *uploader.FacialClient) *Recorder {
	return &Recorder{
		store:  st,
		facial: facial,
	}
}

// Start begins a new tracking session and returns its ID.
func (r *Recorder) Start() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessionID != "" {
		return "", ErrSessionActive
	}

	id := uuid.New().String()
	startedAt := time.Now()

	if err := r.store.Sessions().Create(&store.Session{
		ID:        id,
		StartedAt: startedAt,
	}); err != nil {
		return "", err
	}

	r.sessionID = id
	r.startedAt = startedAt
	r.records = nil
	r.hasLast = false

	return id, nil
}

// Active reports whether a session is currently running.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID != ""
}

// SessionID returns the ID of the active session, or empty when idle.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// Append buffers a record in the active session.
func (r *Recorder) Append(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessionID == "" {
		return ErrNoSession
	}

	r.records = append(r.records, rec)
	r.last = rec
	r.hasLast = true
	return nil
}

// Latest returns the most recent record of the active session.
// The second return value is false when no record has been appended yet.
// The latest record survives Stop so the UI can keep showing the last
// known state between sessions.
func (r *Recorder) Latest() (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.hasLast
}

// Snapshot returns a copy of the records buffered so far.
func (r *Recorder) Snapshot() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Stop ends the active session. The buffered records are persisted, the
// session row is finalized, and the batch is submitted to the facial
// analysis backend. An upload failure is logged and leaves the session
// marked as not uploaded; the stored data is unaffected.
func (r *Recorder) Stop(ctx context.Context) (*store.Session, error) {
	r.mu.Lock()

	if r.sessionID == "" {
		r.mu.Unlock()
		return nil, ErrNoSession
	}

	id := r.sessionID
	startedAt := r.startedAt
	records := r.records

	r.sessionID = ""
	r.startedAt = time.Time{}
	r.records = nil
	r.mu.Unlock()

	endedAt := time.Now()

	frames := make([]store.Frame, len(records))
	for i, rec := range records {
		frames[i] = store.Frame{
			TimestampMs: rec.TimestampMs,
			Emotion:     rec.Emotion,
			Gaze:        rec.Gaze,
			Engagement:  rec.Engagement,
		}
	}

	if len(frames) > 0 {
		if err := r.store.Frames().CreateBatch(id, frames); err != nil {
			return nil, err
		}
	}

	if err := r.store.Sessions().Finish(id, endedAt, len(records)); err != nil {
		return nil, err
	}

	if r.facial != nil {
		batch := &uploader.SessionBatch{
			SessionID:  id,
			StartedAt:  startedAt,
			EndedAt:    endedAt,
			FrameCount: len(records),
			Frames:     make([]uploader.FrameRecord, len(records)),
		}
		for i, rec := range records {
			batch.Frames[i] = uploader.FrameRecord{
				SessionID:   id,
				TimestampMs: rec.TimestampMs,
				Emotion:     rec.Emotion,
				Gaze:        rec.Gaze,
				Engagement:  rec.Engagement,
				Score:       rec.Score,
			}
		}

		if err := r.facial.PostBatch(ctx, batch); err != nil {
			log.Printf("Session %s: batch upload failed: %v", id, err)
		} else if err := r.store.Sessions().MarkUploaded(id); err != nil {
			log.Printf("Session %s: failed to mark uploaded: %v", id, err)
		}
	}

	return r.store.Sessions().GetByID(id)
}
