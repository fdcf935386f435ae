package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mhaile-revolts/cronosFacial/internal/analysis"
	"github.com/mhaile-revolts/cronosFacial/internal/store"
)

// defaultInteractionListLimit caps GET /api/interactions responses.
const defaultInteractionListLimit = 50

// InteractionRecorder is the slice of the application the interactions API
// needs.
type InteractionRecorder interface {
	RecordInteraction(ctx context.Context, in *analysis.Interaction) error
}

// InteractionsHandler handles HTTP requests for interaction signals.
type InteractionsHandler struct {
	store    *store.Store
	recorder InteractionRecorder
}

// NewInteractionsHandler creates a new InteractionsHandler.
func NewInteractionsHandler(s *store.Store, rec InteractionRecorder) *InteractionsHandler {
	return &InteractionsHandler{store: s, recorder: rec}
}

// ServeHTTP implements the http.Handler interface.
func (h *InteractionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createInteractionRequest struct {
	Type        string `json:"type"`
	DurationMs  int64  `json:"duration_ms"`
	TimestampMs int64  `json:"timestamp_ms"`
}

type interactionResponse struct {
	SessionID   string `json:"session_id,omitempty"`
	TimestampMs int64  `json:"timestamp_ms"`
	Type        string `json:"type"`
	DurationMs  int64  `json:"duration_ms"`
}

type listInteractionsResponse struct {
	Interactions []store.Interaction `json:"interactions"`
}

// create handles POST /api/interactions. The signal is persisted, forwarded
// to the analytics backend, and factored into the next engagement estimate.
func (h *InteractionsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "Type is required")
		return
	}

	ts := time.Now()
	if req.TimestampMs > 0 {
		ts = time.UnixMilli(req.TimestampMs)
	}

	in := &analysis.Interaction{
		Timestamp:  ts,
		Type:       req.Type,
		DurationMs: req.DurationMs,
	}

	if err := h.recorder.RecordInteraction(r.Context(), in); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record interaction")
		return
	}

	writeJSON(w, http.StatusCreated, interactionResponse{
		TimestampMs: ts.UnixMilli(),
		Type:        in.Type,
		DurationMs:  in.DurationMs,
	})
}

// list handles GET /api/interactions?limit=N and returns recent signals.
func (h *InteractionsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultInteractionListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	interactions, err := h.store.Interactions().ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list interactions")
		return
	}

	if interactions == nil {
		interactions = []store.Interaction{}
	}
	writeJSON(w, http.StatusOK, listInteractionsResponse{Interactions: interactions})
}
