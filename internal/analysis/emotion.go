package analysis

import (
	"sync"

	"github.com/mhaile-revolts/cronosFacial/internal/detector"
)

// EmotionLabel is one of the closed 7-element emotion set.
type EmotionLabel string

const (
	EmotionAngry    EmotionLabel = "Angry"
	EmotionDisgust  EmotionLabel = "Disgust"
	EmotionFear     EmotionLabel = "Fear"
	EmotionHappy    EmotionLabel = "Happy"
	EmotionSad      EmotionLabel = "Sad"
	EmotionSurprise EmotionLabel = "Surprise"
	EmotionNeutral  EmotionLabel = "Neutral"
)

// emotionCycle is the fixed label order the placeholder classifier walks.
var emotionCycle = [...]EmotionLabel{
	EmotionAngry,
	EmotionDisgust,
	EmotionFear,
	EmotionHappy,
	EmotionSad,
	EmotionSurprise,
	EmotionNeutral,
}

// EmotionClassifier assigns an emotion label to each analyzed frame.
//
// This is the placeholder policy standing in for real model inference: the
// label advances through the fixed cycle every second call and never inspects
// the landmark content. Known limitation, preserved until a real classifier
// replaces it. The call counter is owned by the instance, so independent
// sessions never interfere, and the mutex keeps the cycle intact when frames
// arrive from concurrent workers.
type EmotionClassifier struct {
	mu    sync.Mutex
	calls uint64
}

// NewEmotionClassifier creates a classifier with a fresh call counter.
func NewEmotionClassifier() *EmotionClassifier {
	return &EmotionClassifier{}
}

// Classify returns the emotion label for the frame and advances the internal
// counter. The landmarks parameter is accepted for interface symmetry with a
// real classifier but does not influence the result.
// Always returns a valid label, even for empty or malformed input.
func (c *EmotionClassifier) Classify(landmarks *detector.FaceLandmarks) EmotionLabel {
	c.mu.Lock()
	defer c.mu.Unlock()

	label := emotionCycle[int(c.calls/2)%len(emotionCycle)]
	c.calls++
	return label
}

// Calls returns how many classifications this instance has performed.
func (c *EmotionClassifier) Calls() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset re-zeros the call counter, restarting the label cycle.
func (c *EmotionClassifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}
