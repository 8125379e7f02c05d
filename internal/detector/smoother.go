package detector

import (
	"time"

	"github.com/avashisht/fretcoach/internal/geometry"
)

// HandSmoother applies a One-Euro filter independently to the x and y
// coordinate of every hand landmark. Filters are held in a fixed-size array
// keyed by the Landmark enum, so fingertip subsets taken downstream can never
// pick up another keypoint's filter state.
type HandSmoother struct {
	x [NumLandmarks]*geometry.OneEuroFilter
	y [NumLandmarks]*geometry.OneEuroFilter
}

// NewHandSmoother creates a smoother bank with the given One-Euro parameters.
func NewHandSmoother(minCutoff, beta float64) *HandSmoother {
	s := &HandSmoother{}
	for i := 0; i < NumLandmarks; i++ {
		s.x[i] = geometry.NewOneEuroFilter(minCutoff, beta)
		s.y[i] = geometry.NewOneEuroFilter(minCutoff, beta)
	}
	return s
}

// Smooth filters every keypoint of the hand at the given timestamp and
// returns the smoothed copy. Handedness and score pass through untouched.
func (s *HandSmoother) Smooth(hand HandLandmarks, timestamp time.Time) HandLandmarks {
	t := float64(timestamp.UnixNano()) / float64(time.Second)

	out := hand
	for i := 0; i < NumLandmarks; i++ {
		out.Points[i] = geometry.Point2D{
			X: s.x[i].Filter(hand.Points[i].X, t),
			Y: s.y[i].Filter(hand.Points[i].Y, t),
		}
	}
	return out
}

// Reset clears all per-keypoint filter state. Used when hand tracking is
// lost or the session resets.
func (s *HandSmoother) Reset() {
	for i := 0; i < NumLandmarks; i++ {
		s.x[i].Reset()
		s.y[i].Reset()
	}
}
