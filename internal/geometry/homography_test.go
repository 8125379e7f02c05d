package geometry

import (
	"errors"
	"math"
	"testing"
)

func unitSquare() []Point2D {
	return []Point2D{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: 0, Y: 1},
	}
}

func TestComputeHomography_InvalidPointCount(t *testing.T) {
	src := unitSquare()
	dst := unitSquare()

	if _, err := ComputeHomography(src[:3], dst); !errors.Is(err, ErrInvalidPointCount) {
		t.Errorf("expected ErrInvalidPointCount for 3 source points, got %v", err)
	}
	if _, err := ComputeHomography(src, dst[:2]); !errors.Is(err, ErrInvalidPointCount) {
		t.Errorf("expected ErrInvalidPointCount for 2 destination points, got %v", err)
	}
}

func TestComputeHomography_IdentityRoundTrip(t *testing.T) {
	corners := unitSquare()

	h, err := ComputeHomography(corners, corners)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.Valid() {
		t.Fatal("expected a valid homography")
	}

	for i, p := range corners {
		got := h.Apply(p)
		if Distance(got, p) > 1e-6 {
			t.Errorf("corner %d: expected %v to map to itself, got %v", i, p, got)
		}
	}
}

func TestComputeHomography_UniformScale(t *testing.T) {
	src := []Point2D{
		{X: 0, Y: 0},
		{X: 100, Y: 0},
		{X: 100, Y: 100},
		{X: 0, Y: 100},
	}
	dst := []Point2D{
		{X: 0, Y: 0},
		{X: 200, Y: 0},
		{X: 200, Y: 200},
		{X: 0, Y: 200},
	}

	h, err := ComputeHomography(src, dst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// An interior point should map to twice its relative offset
	got := h.Apply(Point2D{X: 25, Y: 40})
	want := Point2D{X: 50, Y: 80}
	if Distance(got, want) > 1e-6 {
		t.Errorf("expected interior point to map to %v, got %v", want, got)
	}
}

func TestComputeHomography_QuadToUnitSquare(t *testing.T) {
	// A perspective-distorted quadrilateral, roughly a fretboard seen at an
	// angle, should map its own corners exactly onto the unit square.
	src := []Point2D{
		{X: 120, Y: 80},
		{X: 460, Y: 95},
		{X: 430, Y: 390},
		{X: 140, Y: 370},
	}
	dst := unitSquare()

	h, err := ComputeHomography(src, dst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, p := range src {
		got := h.Apply(p)
		if Distance(got, dst[i]) > 1e-6 {
			t.Errorf("corner %d: expected %v, got %v", i, dst[i], got)
		}
	}
}

func TestComputeHomography_DegenerateFallsBackToIdentity(t *testing.T) {
	// Collinear source points make the DLT system singular; the solver must
	// substitute the identity transform rather than return an error.
	src := []Point2D{
		{X: 0, Y: 0},
		{X: 1, Y: 1},
		{X: 2, Y: 2},
		{X: 3, Y: 3},
	}

	h, err := ComputeHomography(src, unitSquare())
	if err != nil {
		t.Fatalf("degenerate input should not error, got %v", err)
	}
	if !h.Valid() {
		t.Fatal("fallback transform must be valid")
	}

	p := Point2D{X: 7, Y: -3}
	if got := h.Apply(p); Distance(got, p) > 1e-9 {
		t.Errorf("expected identity behavior, %v mapped to %v", p, got)
	}
}

func TestHomography_ApplyNearZeroW(t *testing.T) {
	// A matrix whose bottom row annihilates the point must yield the zero
	// point instead of dividing by w.
	h := HomographyFromMatrix([3][3]float64{
		{1, 0, 0},
		{0, 1, 0},
		{1, 0, -2},
	})

	got := h.Apply(Point2D{X: 2, Y: 5})
	if got.X != 0 || got.Y != 0 {
		t.Errorf("expected zero point for degenerate w, got %v", got)
	}
}

func TestHomography_UnsetIsInvalid(t *testing.T) {
	var h Homography
	if h.Valid() {
		t.Error("zero-value homography must be Unset")
	}
	if got := h.Apply(Point2D{X: 3, Y: 4}); got.X != 0 || got.Y != 0 {
		t.Errorf("unset transform should map everything to the zero point, got %v", got)
	}
}

func TestDistanceToSegment(t *testing.T) {
	seg := Line{Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 10, Y: 0}}

	if d := DistanceToSegment(Point2D{X: 5, Y: 3}, seg); math.Abs(d-3) > 1e-9 {
		t.Errorf("perpendicular distance: expected 3, got %f", d)
	}
	// Beyond the end, distance is to the endpoint
	if d := DistanceToSegment(Point2D{X: 13, Y: 4}, seg); math.Abs(d-5) > 1e-9 {
		t.Errorf("endpoint distance: expected 5, got %f", d)
	}
}
