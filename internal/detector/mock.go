package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	landmarks *FaceLandmarks
	err       error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetLandmarks sets the landmarks that will be returned by Detect.
func (m *MockDetector) SetLandmarks(lm *FaceLandmarks) {
	m.landmarks = lm
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured landmarks or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*FaceLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.landmarks, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// NeutralFaceLandmarks returns a preset FaceLandmarks matching the placeholder
// detector output: every landmark value is 0.5.
func NeutralFaceLandmarks() *FaceLandmarks {
	vector := make([]float64, NumLandmarks)
	for i := range vector {
		vector[i] = 0.5
	}
	return &FaceLandmarks{Vector: vector, Score: StubScore}
}

// CenterGazeLandmarks returns a preset FaceLandmarks whose value sum projects
// to zero horizontal and vertical gaze offset, classifying as center.
func CenterGazeLandmarks() *FaceLandmarks {
	return landmarksWithSum(0.5)
}

// RightGazeLandmarks returns a preset FaceLandmarks whose value sum projects
// to a strong positive horizontal offset, classifying as right.
func RightGazeLandmarks() *FaceLandmarks {
	return landmarksWithSum(1.8)
}

// DownLeftGazeLandmarks returns a preset FaceLandmarks whose value sum projects
// to negative offsets on both axes, classifying as down-left.
func DownLeftGazeLandmarks() *FaceLandmarks {
	return landmarksWithSum(0.1)
}

// landmarksWithSum builds a full-size landmark vector whose values add up to
// the given sum. The leading slots carry the mass, the rest stay zero.
func landmarksWithSum(sum float64) *FaceLandmarks {
	vector := make([]float64, NumLandmarks)
	for i := range vector {
		if sum >= 1.0 {
			vector[i] = 1.0
			sum -= 1.0
			continue
		}
		vector[i] = sum
		break
	}
	return &FaceLandmarks{Vector: vector, Score: StubScore}
}
