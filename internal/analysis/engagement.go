// Package analysis provides per-frame emotion, gaze, and engagement estimation.
package analysis

import "strings"

// EngagementState represents the inferred attentiveness level for a frame.
type EngagementState string

const (
	// EngagementUnknown is the default state before any estimation runs.
	EngagementUnknown EngagementState = "Unknown"
	// EngagementHigh indicates strong inferred attentiveness.
	EngagementHigh EngagementState = "High"
	// EngagementMedium indicates moderate inferred attentiveness.
	EngagementMedium EngagementState = "Medium"
	// EngagementLow indicates weak inferred attentiveness.
	EngagementLow EngagementState = "Low"
)

// Factor weights for the combined engagement score. Fixed constants, not
// configurable at call time.
const (
	emotionWeight     = 0.4
	gazeWeight        = 0.4
	interactionWeight = 0.2
)

// Threshold bands for the combined score. High is checked first, so the
// boundary value 0.7 maps to High and 0.4 maps to Medium.
const (
	highThreshold   = 0.7
	mediumThreshold = 0.4
)

// defaultFactorScore is the neutral fallback for unrecognized labels.
const defaultFactorScore = 0.5

// Interaction scores: a neutral default when no interaction signal is present,
// a flat bonus when one is. The score does not differentiate by interaction
// content; the type and duration fields are recorded but not yet weighed.
const (
	absentInteractionScore  = 0.5
	presentInteractionScore = 0.7
)

// emotionScores maps lowercased emotion labels to their engagement factor.
var emotionScores = map[string]float64{
	"happy":    1.0,
	"surprise": 0.9,
	"neutral":  0.6,
	"angry":    0.4,
	"fear":     0.3,
	"sad":      0.2,
	"disgust":  0.1,
}

// gazeScores maps lowercased gaze directions to their engagement factor.
var gazeScores = map[string]float64{
	"center":     1.0,
	"left":       0.6,
	"right":      0.6,
	"up":         0.5,
	"down":       0.3,
	"up-left":    0.5,
	"up-right":   0.5,
	"down-left":  0.3,
	"down-right": 0.3,
	"unknown":    0.4,
}

// Metrics exposes the intermediate factor scores behind an engagement
// estimate for diagnostics. Overall is always the exact score the estimator
// compares against the threshold bands.
type Metrics struct {
	EmotionScore     float64 `json:"emotion_score"`
	GazeScore        float64 `json:"gaze_score"`
	InteractionScore float64 `json:"interaction_score"`
	Overall          float64 `json:"overall_score"`
}

// EngagementEstimator combines emotion, gaze, and an optional interaction
// signal into a three-level engagement classification via weighted linear
// scoring. It is stateless and safe for concurrent use.
type EngagementEstimator struct{}

// NewEngagementEstimator creates a new EngagementEstimator instance.
func NewEngagementEstimator() *EngagementEstimator {
	return &EngagementEstimator{}
}

// Estimate classifies the (emotion, gaze, interaction) triple into an
// engagement state. A nil interaction substitutes the neutral default score.
// The function is total: every input maps to one of High, Medium, or Low.
func (e *EngagementEstimator) Estimate(emotion EmotionLabel, gaze GazeDirection, interaction *Interaction) EngagementState {
	m := e.Metrics(emotion, gaze, interaction)
	switch {
	case m.Overall >= highThreshold:
		return EngagementHigh
	case m.Overall >= mediumThreshold:
		return EngagementMedium
	default:
		return EngagementLow
	}
}

// Metrics computes the per-factor scores and the weighted overall score using
// the same tables and weights as Estimate.
func (e *EngagementEstimator) Metrics(emotion EmotionLabel, gaze GazeDirection, interaction *Interaction) Metrics {
	m := Metrics{
		EmotionScore:     EmotionScore(string(emotion)),
		GazeScore:        GazeScore(string(gaze)),
		InteractionScore: interactionScore(interaction),
	}
	m.Overall = emotionWeight*m.EmotionScore + gazeWeight*m.GazeScore + interactionWeight*m.InteractionScore
	return m
}

// EmotionScore returns the engagement factor for an emotion label. Matching
// is case-insensitive; unrecognized labels degrade to the neutral default
// rather than failing.
func EmotionScore(label string) float64 {
	if score, ok := emotionScores[strings.ToLower(label)]; ok {
		return score
	}
	return defaultFactorScore
}

// GazeScore returns the engagement factor for a gaze direction. Matching is
// case-insensitive; unrecognized directions degrade to the neutral default.
func GazeScore(direction string) float64 {
	if score, ok := gazeScores[strings.ToLower(direction)]; ok {
		return score
	}
	return defaultFactorScore
}

// interactionScore maps the presence of an interaction signal to its factor.
func interactionScore(i *Interaction) float64 {
	if i == nil {
		return absentInteractionScore
	}
	return presentInteractionScore
}
