// Package detector provides face landmark detection interfaces and types for engagement tracking.
package detector

// NumLandmarks is the number of face mesh landmarks per frame, following the
// MediaPipe face mesh convention.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const NumLandmarks = 468

// FaceLandmarks represents a single frame's facial geometry snapshot.
// The vector holds one normalized value per mesh landmark, each in [0,1].
// Instances are immutable after creation.
type FaceLandmarks struct {
	Vector []float64 `json:"vector"`
	Score  float64   `json:"score"`
}

// Empty reports whether the landmark vector carries no data.
func (l *FaceLandmarks) Empty() bool {
	return l == nil || len(l.Vector) == 0
}

// Sum returns the sum of all landmark values. The gaze estimator derives its
// directional projections from this scalar.
func (l *FaceLandmarks) Sum() float64 {
	if l == nil {
		return 0
	}
	var total float64
	for _, v := range l.Vector {
		total += v
	}
	return total
}

// Clone returns a deep copy of the landmarks so callers can retain a frame's
// geometry after the source buffer is reused.
func (l *FaceLandmarks) Clone() *FaceLandmarks {
	if l == nil {
		return nil
	}
	c := &FaceLandmarks{
		Vector: make([]float64, len(l.Vector)),
		Score:  l.Score,
	}
	copy(c.Vector, l.Vector)
	return c
}
