// Package app provides the main application logic for the Cronos engagement tracking agent.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mhaile-revolts/cronosFacial/internal/alert"
	"github.com/mhaile-revolts/cronosFacial/internal/analysis"
	"github.com/mhaile-revolts/cronosFacial/internal/capture"
	"github.com/mhaile-revolts/cronosFacial/internal/detector"
	"github.com/mhaile-revolts/cronosFacial/internal/session"
	"github.com/mhaile-revolts/cronosFacial/internal/store"
	"github.com/mhaile-revolts/cronosFacial/internal/uploader"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no scene activity is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active tracking.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// RecordCallback receives every analyzed frame record as it is produced.
type RecordCallback func(session.Record)

// Config holds configuration options for the application.
type Config struct {
	Store          *store.Store
	Facial         *uploader.FacialClient
	Analytics      *uploader.AnalyticsClient
	PluginDir      string
	CameraID       int
	ActivityThresh float64
	// StreamUploads controls whether every record is also posted to the
	// facial backend's streaming endpoint as it is produced.
	StreamUploads bool
}

// App orchestrates capture, analysis, session recording, uploads, and alerts.
type App struct {
	config     Config
	camera     capture.Camera
	activity   *capture.ActivityDetector
	detector   detector.Detector
	classifier *analysis.EmotionClassifier
	gaze       *analysis.GazeEstimator
	engagement *analysis.EngagementEstimator
	recorder   *session.Recorder
	pluginMgr  *alert.Manager
	dispatcher *alert.Dispatcher

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}

	// pending holds the most recent interaction not yet consumed by a frame.
	pending *analysis.Interaction

	callbacks []RecordCallback
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	activityThreshold := config.ActivityThresh
	if activityThreshold <= 0 {
		activityThreshold = 1.0 // Default threshold: 1% pixel change
	}

	pluginMgr := alert.NewManager(config.PluginDir)

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		activity:   capture.NewActivityDetector(activityThreshold),
		classifier: analysis.NewEmotionClassifier(),
		gaze:       analysis.NewGazeEstimator(),
		engagement: analysis.NewEngagementEstimator(),
		recorder:   session.NewRecorder(config.Store, config.Facial),
		pluginMgr:  pluginMgr,
		dispatcher: alert.NewDispatcher(config.Store, pluginMgr, alert.NewExecutor(5000)),
		enabled:    false,
		stopCh:     nil,
	}

	// Try the face mesh service first, fall back to the stub detector
	if fm, err := detector.NewFaceMeshDetector(detector.DefaultConfig()); err == nil {
		a.detector = fm
		log.Println("Using face mesh detection service")
	} else {
		log.Printf("Face mesh service not available (%v), using stub detector", err)
		a.detector = detector.NewStubDetector()
	}

	return a
}

// SetEnabled enables or disables tracking.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the landmark detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera sets the camera implementation to use.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// RegisterRecordCallback adds a callback invoked for every analyzed frame.
// Callbacks run on the pipeline goroutine and must not block.
func (a *App) RegisterRecordCallback(cb RecordCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, cb)
}

// RecordInteraction persists an interaction signal, forwards it to the
// analytics backend, and hands it to the next analyzed frame so the
// engagement estimate reflects it.
func (a *App) RecordInteraction(ctx context.Context, in *analysis.Interaction) error {
	sessionID := a.recorder.SessionID()

	if a.config.Store != nil {
		rec := &store.Interaction{
			SessionID:   sessionID,
			TimestampMs: in.Timestamp.UnixMilli(),
			Type:        in.Type,
			DurationMs:  in.DurationMs,
		}
		if err := a.config.Store.Interactions().Create(rec); err != nil {
			return err
		}
	}

	if a.config.Analytics != nil {
		ev := &uploader.InteractionEvent{
			SessionID:   sessionID,
			TimestampMs: in.Timestamp.UnixMilli(),
			Type:        in.Type,
			DurationMs:  in.DurationMs,
		}
		if err := a.config.Analytics.PostInteraction(ctx, ev); err != nil {
			log.Printf("Interaction event upload failed: %v", err)
		}
	}

	a.mu.Lock()
	a.pending = in
	a.mu.Unlock()

	return nil
}

// takePendingInteraction consumes the pending interaction, if any.
func (a *App) takePendingInteraction() *analysis.Interaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	in := a.pending
	a.pending = nil
	return in
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// StartSession begins a new tracking session and the capture pipeline.
func (a *App) StartSession() (string, error) {
	id, err := a.recorder.Start()
	if err != nil {
		return "", err
	}

	if err := a.Start(); err != nil {
		// Roll the session back so a camera failure doesn't leave a
		// dangling open session.
		if _, stopErr := a.recorder.Stop(context.Background()); stopErr != nil {
			log.Printf("Failed to roll back session %s: %v", id, stopErr)
		}
		return "", err
	}

	a.dispatcher.Reset()
	a.SetEnabled(true)
	return id, nil
}

// ActiveSessionID returns the ID of the running session, or empty when idle.
func (a *App) ActiveSessionID() string {
	return a.recorder.SessionID()
}

// StopSession halts the pipeline and finalizes the active session.
func (a *App) StopSession(ctx context.Context) (*store.Session, error) {
	a.SetEnabled(false)
	a.Stop()
	return a.recorder.Stop(ctx)
}

// Start begins the capture pipeline without touching session state.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Tracking pipeline started")
	return nil
}

// Stop halts the capture pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.activity.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Tracking pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// ActivityDetector returns the scene activity detector.
func (a *App) ActivityDetector() *capture.ActivityDetector {
	return a.activity
}

// Recorder returns the session recorder.
func (a *App) Recorder() *session.Recorder {
	return a.recorder
}

// PluginManager returns the alert plugin manager.
func (a *App) PluginManager() *alert.Manager {
	return a.pluginMgr
}

// Dispatcher returns the alert dispatcher.
func (a *App) Dispatcher() *alert.Dispatcher {
	return a.dispatcher
}

// Detector returns the landmark detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Engagement returns the engagement estimator.
func (a *App) Engagement() *analysis.EngagementEstimator {
	return a.engagement
}

// Store returns the backing store.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// now is a hook for tests.
var now = time.Now
