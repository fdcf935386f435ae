package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mhaile-revolts/cronosFacial/internal/store"
)

// SessionController is the slice of the application the sessions API needs.
type SessionController interface {
	StartSession() (string, error)
	StopSession(ctx context.Context) (*store.Session, error)
	ActiveSessionID() string
}

// SessionsHandler handles HTTP requests for tracking session resources.
type SessionsHandler struct {
	store      *store.Store
	controller SessionController
}

// NewSessionsHandler creates a new SessionsHandler with the given store and
// session controller.
func NewSessionsHandler(s *store.Store, c SessionController) *SessionsHandler {
	return &SessionsHandler{store: s, controller: c}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
//
// Routes:
//
//	GET    /api/sessions            list sessions
//	POST   /api/sessions            start a new session
//	GET    /api/sessions/{id}        session detail with frames
//	POST   /api/sessions/{id}/stop   stop the active session
//	DELETE /api/sessions/{id}        delete a session and its frames
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.start(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/stop"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.stop(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type sessionResponse struct {
	ID         string        `json:"id"`
	StartedAt  string        `json:"started_at"`
	EndedAt    string        `json:"ended_at,omitempty"`
	FrameCount int           `json:"frame_count"`
	Uploaded   bool          `json:"uploaded"`
	Active     bool          `json:"active"`
	Frames     []store.Frame `json:"frames,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

func (h *SessionsHandler) toResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:         s.ID,
		StartedAt:  s.StartedAt.Format(time.RFC3339),
		FrameCount: s.FrameCount,
		Uploaded:   s.Uploaded,
		Active:     h.controller != nil && h.controller.ActiveSessionID() == s.ID,
	}
	if s.EndedAt != nil {
		resp.EndedAt = s.EndedAt.Format(time.RFC3339)
	}
	return resp
}

// list handles GET /api/sessions and returns all sessions.
func (h *SessionsHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, h.toResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id} and returns a session with its frames.
func (h *SessionsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	session, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	frames, err := h.store.Frames().GetBySessionID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session frames")
		return
	}

	resp := h.toResponse(session)
	resp.Frames = frames
	writeJSON(w, http.StatusOK, resp)
}

// start handles POST /api/sessions and starts a new tracking session.
func (h *SessionsHandler) start(w http.ResponseWriter, r *http.Request) {
	if h.controller == nil {
		writeError(w, http.StatusServiceUnavailable, "Tracking is not available")
		return
	}

	id, err := h.controller.StartSession()
	if err != nil {
		if h.controller.ActiveSessionID() != "" {
			writeError(w, http.StatusConflict, "A session is already active")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	session, err := h.store.Sessions().GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}

	writeJSON(w, http.StatusCreated, h.toResponse(session))
}

// stop handles POST /api/sessions/{id}/stop and stops the active session.
func (h *SessionsHandler) stop(w http.ResponseWriter, r *http.Request, id string) {
	if h.controller == nil {
		writeError(w, http.StatusServiceUnavailable, "Tracking is not available")
		return
	}

	if h.controller.ActiveSessionID() != id {
		writeError(w, http.StatusConflict, "Session is not active")
		return
	}

	session, err := h.controller.StopSession(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to stop session")
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(session))
}

// delete handles DELETE /api/sessions/{id} and removes a session.
func (h *SessionsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if h.controller != nil && h.controller.ActiveSessionID() == id {
		writeError(w, http.StatusConflict, "Cannot delete the active session")
		return
	}

	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
