package detector

import (
	"image"
	"time"

	"github.com/avashisht/fretcoach/internal/geometry"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame image.Image, timestamp time.Time) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// GripHandLandmarks builds a preset hand whose fingertips sit at the given
// image positions (indexed by finger ID, thumb through pinky), with the
// remaining joints interpolated between the wrist and each tip. Useful for
// simulating a fretting hand with fingers placed on target chord positions.
func GripHandLandmarks(wrist geometry.Point2D, tips [5]geometry.Point2D) HandLandmarks {
	hand := HandLandmarks{
		Handedness: "Left",
		Score:      0.95,
	}
	hand.Points[Wrist] = wrist

	// Joint chains for each finger, base to tip, excluding the tip itself.
	chains := [5][]Landmark{
		{ThumbCMC, ThumbMCP, ThumbIP},
		{IndexMCP, IndexPIP, IndexDIP},
		{MiddleMCP, MiddlePIP, MiddleDIP},
		{RingMCP, RingPIP, RingDIP},
		{PinkyMCP, PinkyPIP, PinkyDIP},
	}

	for finger, chain := range chains {
		tip := tips[finger]
		steps := len(chain) + 1
		for j, lm := range chain {
			t := float64(j+1) / float64(steps+1)
			hand.Points[lm] = geometry.Lerp(wrist, tip, t)
		}
		hand.Points[Fingertips[finger]] = tip
	}

	return hand
}

// ClusteredHandLandmarks builds a hand with all 21 keypoints packed tightly
// around a center point. Useful for hand-role tests where only the region a
// hand occupies matters.
func ClusteredHandLandmarks(center geometry.Point2D, handedness string) HandLandmarks {
	hand := HandLandmarks{
		Handedness: handedness,
		Score:      0.9,
	}
	for i := 0; i < NumLandmarks; i++ {
		// Small deterministic spread so keypoints are not all identical
		dx := float64(i%5) - 2
		dy := float64(i/5) - 2
		hand.Points[i] = geometry.Point2D{X: center.X + dx, Y: center.Y + dy}
	}
	return hand
}
