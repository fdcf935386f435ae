package detector

import "gocv.io/x/gocv"

// StubScore is the detection score reported for every stub detection.
const StubScore = 0.95

// StubDetector is the placeholder detection path used until on-device model
// inference lands. It returns the same constant-filled landmark vector for
// every frame, which makes the downstream per-frame analysis content-independent.
// This is a known limitation of the placeholder, not intended behavior.
type StubDetector struct {
	vector []float64
}

// NewStubDetector creates a StubDetector with a 0.5-filled landmark vector.
func NewStubDetector() *StubDetector {
	vector := make([]float64, NumLandmarks)
	for i := range vector {
		vector[i] = 0.5
	}
	return &StubDetector{vector: vector}
}

// Detect returns the constant placeholder landmarks regardless of frame content.
// TODO: replace with real face mesh inference once the model service ships.
func (d *StubDetector) Detect(frame *gocv.Mat) (*FaceLandmarks, error) {
	lm := &FaceLandmarks{
		Vector: make([]float64, len(d.vector)),
		Score:  StubScore,
	}
	copy(lm.Vector, d.vector)
	return lm, nil
}

// Close is a no-op for the stub detector.
func (d *StubDetector) Close() error {
	return nil
}
