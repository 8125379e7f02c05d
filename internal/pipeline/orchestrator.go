// Package pipeline runs the per-frame coaching loop: capture, hand
// detection, fretboard localization, fingertip mapping, and chord scoring.
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/avashisht/fretcoach/internal/capture"
	"github.com/avashisht/fretcoach/internal/chord"
	"github.com/avashisht/fretcoach/internal/detector"
	"github.com/avashisht/fretcoach/internal/fretboard"
	"github.com/avashisht/fretcoach/internal/geometry"
	"github.com/avashisht/fretcoach/internal/vision"
)

// Pipeline timing constants.
const (
	// DefaultFPS is the frame rate of the coaching loop.
	DefaultFPS = 15
	// DefaultGeometryRefreshInterval is how many frames a reliable geometry
	// estimate is reused before the localizer runs again.
	DefaultGeometryRefreshInterval = 10
	// maxTrackedHands bounds smoothing state; a guitarist has two.
	maxTrackedHands = 2
	// staleGeometryConfidence forces a localizer rerun on every frame
	// until a stronger estimate is found.
	staleGeometryConfidence = 0.6
)

// Config holds configuration options for the orchestrator.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Catalog  *chord.Catalog

	FPS                     int
	GeometryRefreshInterval int

	// One-Euro filter parameters for landmark smoothing. Zero values take
	// the package defaults.
	FilterMinCutoff float64
	FilterBeta      float64
}

// Observer receives every completed frame snapshot. It is called outside
// the orchestrator lock and must not block for long.
type Observer func(*FrameSnapshot)

// Orchestrator drives the frame loop and owns all per-session state: the
// current fretboard geometry, the landmark smoothers, the target chord, and
// the stability tracker.
type Orchestrator struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	catalog  *chord.Catalog

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	observer Observer

	geom       fretboard.Geometry
	manualGeom bool
	frameCount int

	// Smoother banks are keyed by handedness label, not detector output
	// order, which is not stable across frames.
	smoothers      [maxTrackedHands]*detector.HandSmoother
	smootherLabels [maxTrackedHands]string

	target     *chord.Template
	targetName string
	tracker    chord.StabilityTracker

	latest *FrameSnapshot
}

// New creates an Orchestrator from the given configuration. Camera and
// Detector are required; Catalog defaults to the built-in open chords.
func New(config Config) *Orchestrator {
	if config.Catalog == nil {
		config.Catalog = chord.NewCatalog()
	}
	minCutoff := config.FilterMinCutoff
	if minCutoff <= 0 {
		minCutoff = geometry.DefaultMinCutoff
	}
	beta := config.FilterBeta
	if beta <= 0 {
		beta = geometry.DefaultBeta
	}

	o := &Orchestrator{
		config:   config,
		camera:   config.Camera,
		detector: config.Detector,
		catalog:  config.Catalog,
		tracker:  chord.NewStabilityTracker(),
	}
	for i := range o.smoothers {
		o.smoothers[i] = detector.NewHandSmoother(minCutoff, beta)
	}
	return o
}

// Start opens the camera and launches the frame loop.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil
	}
	o.running = true
	o.stopCh = make(chan struct{})
	o.mu.Unlock()

	if err := o.camera.Open(); err != nil {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
		return fmt.Errorf("open camera: %w", err)
	}

	go o.run()
	return nil
}

// Stop halts the frame loop, closes the camera, and resets per-run state.
// The current geometry estimate survives so a restart does not require
// recalibration.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	close(o.stopCh)
	o.resetSmoothers()
	o.tracker = chord.NewStabilityTracker()
	o.mu.Unlock()

	if err := o.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
}

// IsRunning reports whether the frame loop is active.
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// SetObserver registers the snapshot consumer. Only one observer is held;
// fan-out is the consumer's job.
func (o *Orchestrator) SetObserver(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observer = obs
}

// Snapshot returns the most recent frame snapshot, or nil before the first
// processed frame.
func (o *Orchestrator) Snapshot() *FrameSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.latest
}

// Geometry returns the current fretboard geometry estimate.
func (o *Orchestrator) Geometry() fretboard.Geometry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.geom
}

// SetTargetChord selects the chord being practiced and resets the stability
// tracker. An unknown name leaves the current target untouched.
func (o *Orchestrator) SetTargetChord(name string) error {
	tmpl, ok := o.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown chord %q", name)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.target = tmpl
	o.targetName = name
	o.tracker = chord.NewStabilityTracker()
	return nil
}

// ClearTargetChord stops chord scoring.
func (o *Orchestrator) ClearTargetChord() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.target = nil
	o.targetName = ""
	o.tracker = chord.NewStabilityTracker()
}

// TargetChord returns the name of the chord being practiced, empty when none.
func (o *Orchestrator) TargetChord() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.targetName
}

// SetManualCalibration installs an operator-tapped four-point calibration.
// The resulting geometry is returned so callers can persist it; it is only
// adopted when usable.
func (o *Orchestrator) SetManualCalibration(nutLeft, nutRight, refLeft, refRight geometry.Point2D) fretboard.Geometry {
	geom := fretboard.CalibrateManual(nutLeft, nutRight, refLeft, refRight)

	o.mu.Lock()
	defer o.mu.Unlock()
	if geom.Usable() {
		o.geom = geom
		o.manualGeom = true
	}
	return geom
}

// SetGeometry installs a previously saved geometry, e.g. a calibration
// profile loaded from the store.
func (o *Orchestrator) SetGeometry(geom fretboard.Geometry, manual bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if geom.Usable() {
		o.geom = geom
		o.manualGeom = manual
	}
}

// run is the frame loop. Frame read errors are logged and skipped; the loop
// only exits on Stop.
func (o *Orchestrator) run() {
	fps := o.config.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-o.stopCh:
			return
		case <-ticker.C:
			frame, err := o.camera.ReadFrame()
			if err != nil {
				if !errors.Is(err, capture.ErrFrameNotReady) {
					log.Printf("Error reading frame: %v", err)
				}
				continue
			}
			o.ProcessFrame(frame)
		}
	}
}

// ProcessFrame runs the full per-frame pass over one captured frame and
// returns the resulting snapshot. It is safe to call directly, which is how
// tests and offline replays drive the pipeline.
func (o *Orchestrator) ProcessFrame(frame *capture.Frame) *FrameSnapshot {
	o.mu.Lock()
	snap := o.processLocked(frame)
	o.latest = snap
	obs := o.observer
	o.mu.Unlock()

	if obs != nil {
		obs(snap)
	}
	return snap
}

func (o *Orchestrator) processLocked(frame *capture.Frame) *FrameSnapshot {
	o.frameCount++
	o.maybeRefreshGeometry(frame)

	snap := &FrameSnapshot{
		Timestamp:     frame.Timestamp,
		Geometry:      o.geom,
		FrettingHand:  -1,
		StrummingHand: -1,
		TargetChord:   o.targetName,
	}

	hands, err := o.detector.Detect(frame.Image, frame.Timestamp)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return snap
	}

	if len(hands) == 0 {
		// Losing the hands invalidates filter history; stale derivatives
		// would otherwise drag the next detection toward old positions.
		o.resetSmoothers()
		return snap
	}

	if len(hands) > maxTrackedHands {
		hands = hands[:maxTrackedHands]
	}
	hands = o.smoothHands(hands, frame.Timestamp)
	snap.Hands = hands

	roles := fretboard.AssignRoles(hands, o.geom.ROI)
	snap.FrettingHand = roles.Fretting
	snap.StrummingHand = roles.Strumming

	if o.geom.Usable() && roles.Fretting >= 0 {
		tips := hands[roles.Fretting].FingertipPoints()
		snap.Assignments = fretboard.MapFingertips(o.geom, tips)
	}

	if o.target != nil && len(snap.Assignments) > 0 {
		result := chord.Match(o.target, snap.Assignments)
		o.tracker = o.tracker.Update(result.Score, frame.Timestamp)
		result.StabilityMs = o.tracker.StableMs
		snap.Match = &result
		snap.Stable = o.tracker.IsStable()
	}

	return snap
}

// smoothHands pairs each detected hand with the smoother holding its
// handedness label, smoothing into a copy since the detector may reuse its
// result slice. A hand with no matching bank claims a free one and starts
// from a reset filter, and a bank whose hand vanished is reset, so filter
// history never crosses from one hand to another when the detector reorders
// its output or drops a hand.
func (o *Orchestrator) smoothHands(hands []detector.HandLandmarks, timestamp time.Time) []detector.HandLandmarks {
	var used [maxTrackedHands]bool
	var bank [maxTrackedHands]int

	for i := range hands {
		bank[i] = -1
		for s := 0; s < maxTrackedHands; s++ {
			if !used[s] && o.smootherLabels[s] == hands[i].Handedness {
				bank[i] = s
				used[s] = true
				break
			}
		}
	}
	for i := range hands {
		if bank[i] >= 0 {
			continue
		}
		for s := 0; s < maxTrackedHands; s++ {
			if !used[s] {
				o.smoothers[s].Reset()
				o.smootherLabels[s] = hands[i].Handedness
				bank[i] = s
				used[s] = true
				break
			}
		}
	}
	for s := 0; s < maxTrackedHands; s++ {
		if !used[s] {
			o.smoothers[s].Reset()
			o.smootherLabels[s] = ""
		}
	}

	smoothed := make([]detector.HandLandmarks, len(hands))
	for i := range hands {
		smoothed[i] = o.smoothers[bank[i]].Smooth(hands[i], timestamp)
	}
	return smoothed
}

func (o *Orchestrator) resetSmoothers() {
	for s := 0; s < maxTrackedHands; s++ {
		o.smoothers[s].Reset()
		o.smootherLabels[s] = ""
	}
}

// maybeRefreshGeometry re-runs the automatic localizer when the estimate is
// stale or weak. A new estimate is adopted only when it is at least as
// confident as the current one, and a manual calibration is only displaced
// by a strictly better estimate.
func (o *Orchestrator) maybeRefreshGeometry(frame *capture.Frame) {
	interval := o.config.GeometryRefreshInterval
	if interval <= 0 {
		interval = DefaultGeometryRefreshInterval
	}

	fresh := o.geom.Usable() && o.geom.Confidence >= staleGeometryConfidence
	if fresh && o.frameCount%interval != 1 {
		return
	}

	gray := vision.FromImage(frame.Image, vision.DefaultDetectWidth)
	auto := fretboard.LocateAuto(gray)
	if gray.Width > 0 && frame.Width > gray.Width {
		auto = auto.Scaled(float64(frame.Width) / float64(gray.Width))
	}

	if o.manualGeom {
		if auto.Confidence > o.geom.Confidence {
			o.geom = auto
			o.manualGeom = false
		}
		return
	}
	if auto.Confidence >= o.geom.Confidence {
		o.geom = auto
	}
}
