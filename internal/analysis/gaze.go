package analysis

import (
	"math"

	"github.com/mhaile-revolts/cronosFacial/internal/detector"
)

// GazeDirection is one of nine direction labels plus unknown.
type GazeDirection string

const (
	GazeCenter    GazeDirection = "center"
	GazeLeft      GazeDirection = "left"
	GazeRight     GazeDirection = "right"
	GazeUp        GazeDirection = "up"
	GazeDown      GazeDirection = "down"
	GazeUpLeft    GazeDirection = "up-left"
	GazeUpRight   GazeDirection = "up-right"
	GazeDownLeft  GazeDirection = "down-left"
	GazeDownRight GazeDirection = "down-right"
	GazeUnknown   GazeDirection = "unknown"
)

// Gaze projection constants. Both axes classify against the same offset bound.
const (
	gazeOffsetBound = 0.15
	gazeXScale      = 0.6
	gazeYScale      = 0.5
	gazeYFactor     = 1.3

	// GazeConfidence is reported for every estimate over non-empty landmarks.
	GazeConfidence = 0.85
)

// GazeEstimator derives a gaze direction from the landmark value sum via two
// scalar projections thresholded against fixed bounds. It holds no state and
// is referentially transparent: identical landmarks always yield identical
// results.
type GazeEstimator struct{}

// NewGazeEstimator creates a new GazeEstimator instance.
func NewGazeEstimator() *GazeEstimator {
	return &GazeEstimator{}
}

// Estimate returns the gaze direction and a confidence score for the frame.
// An empty landmark vector yields (unknown, 0).
func (g *GazeEstimator) Estimate(landmarks *detector.FaceLandmarks) (GazeDirection, float64) {
	if landmarks.Empty() {
		return GazeUnknown, 0
	}

	sum := landmarks.Sum()
	offsetX := (math.Mod(sum, 1.0) - 0.5) * gazeXScale
	offsetY := (math.Mod(sum*gazeYFactor, 1.0) - 0.5) * gazeYScale

	var horizontal, vertical GazeDirection
	if offsetX > gazeOffsetBound {
		horizontal = GazeRight
	} else if offsetX < -gazeOffsetBound {
		horizontal = GazeLeft
	}
	if offsetY > gazeOffsetBound {
		vertical = GazeUp
	} else if offsetY < -gazeOffsetBound {
		vertical = GazeDown
	}

	switch {
	case vertical != "" && horizontal != "":
		return vertical + "-" + horizontal, GazeConfidence
	case vertical != "":
		return vertical, GazeConfidence
	case horizontal != "":
		return horizontal, GazeConfidence
	default:
		return GazeCenter, GazeConfidence
	}
}
