package app

import (
	"context"
	"log"
	"time"

	"github.com/mhaile-revolts/cronosFacial/internal/detector"
	"github.com/mhaile-revolts/cronosFacial/internal/session"
	"github.com/mhaile-revolts/cronosFacial/internal/uploader"
)

// runPipeline is the main tracking loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on
// scene activity.
//
// Pipeline logic:
// 1. Start in idle mode (idleFPS=5)
// 2. On scene activity, switch to active mode (activeFPS=15)
// 3. Run landmark detection
// 4. Classify emotion, estimate gaze, score engagement
// 5. Append the record to the active session and notify callbacks
// 6. Stream the record to the facial backend when enabled
// 7. Feed the engagement state to the alert dispatcher
// 8. After 2s without activity, switch back to idle mode
func (a *App) runPipeline(stopCh chan struct{}) {
	activeMode := false
	lastActivityTime := now()

	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Scene activity gate
			activityDetected, _ := a.activity.Detect(frame)

			if activityDetected {
				lastActivityTime = now()

				if !activeMode {
					activeMode = true
					a.Camera().SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastActivityTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.Camera().SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			det := a.Detector()
			if !activeMode || det == nil {
				frame.Close()
				continue
			}

			// Step 2: Landmark detection
			landmarks, err := det.Detect(frame)
			frame.Close() // Done with the frame

			if err != nil {
				log.Printf("Error detecting landmarks: %v", err)
				continue
			}

			if landmarks == nil || landmarks.Empty() {
				continue
			}

			a.analyzeFrame(landmarks)
		}
	}
}

// analyzeFrame runs the scoring trio on a landmark vector and routes the
// resulting record to the session, callbacks, uploader, and alerts.
func (a *App) analyzeFrame(landmarks *detector.FaceLandmarks) {
	emotion := a.classifier.Classify(landmarks)
	gazeDir, _ := a.gaze.Estimate(landmarks)
	interaction := a.takePendingInteraction()

	metrics := a.engagement.Metrics(emotion, gazeDir, interaction)
	state := a.engagement.Estimate(emotion, gazeDir, interaction)

	rec := session.Record{
		TimestampMs: now().UnixMilli(),
		Emotion:     string(emotion),
		Gaze:        string(gazeDir),
		Engagement:  string(state),
		Score:       metrics.Overall,
	}

	if err := a.recorder.Append(rec); err != nil {
		log.Printf("Failed to record frame: %v", err)
		return
	}

	a.mu.RLock()
	callbacks := a.callbacks
	a.mu.RUnlock()
	for _, cb := range callbacks {
		cb(rec)
	}

	if a.config.StreamUploads && a.config.Facial != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := a.config.Facial.PostStream(ctx, &uploader.FrameRecord{
			SessionID:   a.recorder.SessionID(),
			TimestampMs: rec.TimestampMs,
			Emotion:     rec.Emotion,
			Gaze:        rec.Gaze,
			Engagement:  rec.Engagement,
			Score:       rec.Score,
		})
		cancel()
		if err != nil {
			log.Printf("Stream upload failed: %v", err)
		}
	}

	a.dispatcher.Observe(string(state), metrics.Overall)
}
