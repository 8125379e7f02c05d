// Package detector provides hand landmark detection interfaces and types for
// the fretboard coaching pipeline.
package detector

import "github.com/avashisht/fretcoach/internal/geometry"

// Landmark identifies one of the 21 hand keypoints, following the MediaPipe
// hand-landmark topology.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
type Landmark int

const (
	Wrist Landmark = iota
	ThumbCMC
	ThumbMCP
	ThumbIP
	ThumbTip
	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip
	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip
	RingMCP
	RingPIP
	RingDIP
	RingTip
	PinkyMCP
	PinkyPIP
	PinkyDIP
	PinkyTip
)

// NumLandmarks is the fixed size of the hand topology.
const NumLandmarks = 21

// Fingertips lists the tip landmark of each finger, indexed by finger ID
// (0 = thumb through 4 = pinky).
var Fingertips = [5]Landmark{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// HandLandmarks represents one detected hand: 21 keypoints in image-space
// coordinates, plus the detector's handedness label and confidence score.
type HandLandmarks struct {
	Points     [NumLandmarks]geometry.Point2D `json:"points"`
	Handedness string                         `json:"handedness"` // "Left" or "Right"
	Score      float64                        `json:"score"`
}

// FingertipPoints returns the five fingertip positions indexed by finger ID.
func (h *HandLandmarks) FingertipPoints() [5]geometry.Point2D {
	var out [5]geometry.Point2D
	for i, lm := range Fingertips {
		out[i] = h.Points[lm]
	}
	return out
}
