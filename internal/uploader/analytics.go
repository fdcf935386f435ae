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

// InteractionEvent is a user-interaction signal as sent to the analytics
// backend.
type InteractionEvent struct {
	SessionID   string `json:"session_id,omitempty"`
	TimestampMs int64  `json:"timestamp_ms"`
	Type        string `json:"type"`
	DurationMs  int64  `json:"duration_ms"`
}

// AnalyticsClient talks to the analytics backend.
type AnalyticsClient struct {
	baseURL string
	client  *http.Client
}

// NewAnalyticsClient creates a client for the analytics backend at baseURL.
// A non-positive timeout falls back to DefaultTimeout.
func NewAnalyticsClient(baseURL string, timeout time.Duration) *AnalyticsClient {
	return &AnalyticsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

// PostInteraction submits an interaction event.
func (c *AnalyticsClient) PostInteraction(ctx context.Context, ev *InteractionEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	url := c.baseURL + "/events/interaction"
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

	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend returned status %d for %s", resp.StatusCode, url)
	}

	return nil
}
