package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// ActivityDetector decides whether a scene is worth analyzing by comparing
// consecutive frames with frame differencing. The pipeline uses it to stay at
// a low idle frame rate when nobody is in front of the camera.
type ActivityDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// Frame differencing constants.
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
)

// NewActivityDetector creates a new ActivityDetector with the given threshold.
// The threshold is the percentage of pixels that must change between frames.
// For example, a threshold of 1.0 means 1% of pixels must change.
func NewActivityDetector(threshold float64) *ActivityDetector {
	return &ActivityDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect analyzes a frame for scene activity compared to the previous frame.
// Returns whether activity was detected and the percentage of pixels changed.
//
// Algorithm:
// 1. Convert frame to grayscale
// 2. Apply Gaussian blur (21x21) to reduce noise
// 3. If first frame, store as baseline and return false
// 4. Calculate absolute difference with previous frame
// 5. Threshold the difference (threshold=25)
// 6. Count non-zero pixels / total pixels = changePercent
// 7. Return changePercent > threshold
func (a *ActivityDetector) Detect(frame *gocv.Mat) (bool, float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	// First frame becomes the baseline.
	if !a.initialized {
		blurred.CopyTo(&a.prevGray)
		a.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, a.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()

	changePercent := float64(nonZero) / float64(totalPixels) * 100.0

	blurred.CopyTo(&a.prevGray)

	return changePercent > a.threshold, changePercent
}

// Reset clears the detector state, allowing it to be reused with a new
// baseline frame.
func (a *ActivityDetector) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.prevGray.Empty() {
		a.prevGray.Close()
		a.prevGray = gocv.NewMat()
	}
	a.initialized = false
}

// Close releases resources used by the detector.
func (a *ActivityDetector) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.prevGray.Empty() {
		a.prevGray.Close()
		a.prevGray = gocv.NewMat()
	}
	a.initialized = false
}

// SetThreshold sets the activity threshold as a percentage of changed pixels.
// Values less than or equal to 0 are ignored.
func (a *ActivityDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.threshold = threshold
}
