package detector

import (
	"math"
	"testing"
	"time"

	"github.com/avashisht/fretcoach/internal/geometry"
)

func TestHandSmoother_ConstantHandConverges(t *testing.T) {
	s := NewHandSmoother(1.0, 0.007)

	hand := GripHandLandmarks(
		geometry.Point2D{X: 320, Y: 400},
		[5]geometry.Point2D{
			{X: 300, Y: 200}, {X: 310, Y: 180}, {X: 320, Y: 170},
			{X: 330, Y: 180}, {X: 340, Y: 200},
		},
	)

	start := time.Now()
	var out HandLandmarks
	for i := 0; i < 100; i++ {
		out = s.Smooth(hand, start.Add(time.Duration(i)*33*time.Millisecond))
	}

	for lm := 0; lm < NumLandmarks; lm++ {
		if geometry.Distance(out.Points[lm], hand.Points[lm]) > 0.1 {
			t.Errorf("landmark %d did not converge: got %v want %v",
				lm, out.Points[lm], hand.Points[lm])
		}
	}
}

func TestHandSmoother_StepIsSmoothed(t *testing.T) {
	s := NewHandSmoother(1.0, 0.001)

	a := ClusteredHandLandmarks(geometry.Point2D{X: 100, Y: 100}, "Left")
	b := ClusteredHandLandmarks(geometry.Point2D{X: 200, Y: 100}, "Left")

	start := time.Now()
	s.Smooth(a, start)
	out := s.Smooth(b, start.Add(33*time.Millisecond))

	// One sample after a 100px jump the filtered wrist must lag behind
	gotX := out.Points[Wrist].X
	if gotX >= b.Points[Wrist].X-1 {
		t.Errorf("expected smoothing lag after step, wrist at %f", gotX)
	}
	if gotX <= a.Points[Wrist].X {
		t.Errorf("expected wrist to move toward the step, wrist at %f", gotX)
	}
}

func TestHandSmoother_ResetClearsState(t *testing.T) {
	s := NewHandSmoother(1.0, 0.007)

	a := ClusteredHandLandmarks(geometry.Point2D{X: 100, Y: 100}, "Left")
	start := time.Now()
	s.Smooth(a, start)
	s.Smooth(a, start.Add(33*time.Millisecond))

	s.Reset()

	// After reset the first sample passes through raw
	b := ClusteredHandLandmarks(geometry.Point2D{X: 500, Y: 300}, "Left")
	out := s.Smooth(b, start.Add(66*time.Millisecond))

	for lm := 0; lm < NumLandmarks; lm++ {
		if math.Abs(out.Points[lm].X-b.Points[lm].X) > 1e-9 {
			t.Fatalf("landmark %d not raw after reset: got %v want %v",
				lm, out.Points[lm], b.Points[lm])
		}
	}
}
