package pipeline

import (
	"time"

	"github.com/avashisht/fretcoach/internal/chord"
	"github.com/avashisht/fretcoach/internal/detector"
	"github.com/avashisht/fretcoach/internal/fretboard"
)

// FrameSnapshot is the full result of processing one frame. It is built
// fresh per frame and never mutated afterwards, so observers may hold it
// without copying.
type FrameSnapshot struct {
	Timestamp time.Time `json:"timestamp"`

	Geometry fretboard.Geometry       `json:"geometry"`
	Hands    []detector.HandLandmarks `json:"hands"`

	// FrettingHand and StrummingHand index into Hands, -1 when absent.
	FrettingHand  int `json:"frettingHand"`
	StrummingHand int `json:"strummingHand"`

	Assignments []fretboard.FingerAssignment `json:"assignments,omitempty"`

	TargetChord string             `json:"targetChord,omitempty"`
	Match       *chord.MatchResult `json:"match,omitempty"`
	Stable      bool               `json:"stable"`
}
