package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FrameRecord is a single analyzed frame as sent to the facial analysis
// backend. Engagement carries the state name (High, Medium, Low, Unknown).
type FrameRecord struct {
	SessionID   string  `json:"session_id"`
	TimestampMs int64   `json:"timestamp_ms"`
	Emotion     string  `json:"emotion"`
	Gaze        string  `json:"gaze"`
	Engagement  string  `json:"engagement"`
	Score       float64 `json:"score"`
}

// SessionBatch is the end-of-session payload for the facial analysis backend.
type SessionBatch struct {
	SessionID  string        `json:"session_id"`
	StartedAt  time.Time     `json:"started_at"`
	EndedAt    time.Time     `json:"ended_at"`
	FrameCount int           `json:"frame_count"`
	Frames     []FrameRecord `json:"frames"`
}

// FacialClient talks to the facial analysis backend.
type FacialClient struct {
	baseURL string
	client  *http.Client
}

// NewFacialClient creates a client for the facial analysis backend at baseURL.
// A non-positive timeout falls back to DefaultTimeout.
func NewFacialClient(baseURL string, timeout time.Duration) *FacialClient {
	return &FacialClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

// PostStream submits a single frame record to the streaming endpoint.
func (c *FacialClient) PostStream(ctx context.Context, rec *FrameRecord) error {
	return c.post(ctx, c.baseURL+"/facial-analysis/stream", rec)
}

// PostBatch submits a complete session batch.
func (c *FacialClient) PostBatch(ctx context.Context, batch *SessionBatch) error {
	return c.post(ctx, c.baseURL+"/facial-analysis/batch", batch)
}

func (c *FacialClient) post(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to %s: %w", url, err)
	}
	defer resp.Body.Close()

	// Drain the body so the connection can be reused
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend returned status %d for %s", resp.StatusCode, url)
	}

	return nil
}
