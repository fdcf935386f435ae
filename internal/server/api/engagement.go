package api

import (
	"net/http"
	"time"

	"github.com/mhaile-revolts/cronosFacial/internal/analysis"
)

// EngagementHandler exposes the engagement estimator's factor scores for
// diagnostics. It lets a UI or an operator probe how a given
// (emotion, gaze, interaction) triple would be scored.
type EngagementHandler struct {
	estimator *analysis.EngagementEstimator
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(estimator *analysis.EngagementEstimator) *EngagementHandler {
	return &EngagementHandler{estimator: estimator}
}

type engagementMetricsResponse struct {
	Emotion     string           `json:"emotion"`
	Gaze        string           `json:"gaze"`
	Interaction bool             `json:"interaction"`
	State       string           `json:"state"`
	Metrics     analysis.Metrics `json:"metrics"`
}

// ServeHTTP handles GET /api/engagement/metrics?emotion=&gaze=&interaction=.
// Unrecognized labels are accepted and score the neutral default, matching
// the estimator's behavior.
func (h *EngagementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	emotion := analysis.EmotionLabel(q.Get("emotion"))
	gaze := analysis.GazeDirection(q.Get("gaze"))

	var interaction *analysis.Interaction
	switch q.Get("interaction") {
	case "", "false", "0":
	case "true", "1":
		interaction = &analysis.Interaction{Timestamp: time.Now()}
	default:
		writeError(w, http.StatusBadRequest, "Invalid interaction flag")
		return
	}

	writeJSON(w, http.StatusOK, engagementMetricsResponse{
		Emotion:     string(emotion),
		Gaze:        string(gaze),
		Interaction: interaction != nil,
		State:       string(h.estimator.Estimate(emotion, gaze, interaction)),
		Metrics:     h.estimator.Metrics(emotion, gaze, interaction),
	})
}
