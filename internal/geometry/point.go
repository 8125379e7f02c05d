// Package geometry provides the 2D primitives and projective transforms used
// to map camera-space observations onto the rectified fretboard plane.
package geometry

import "math"

// Point2D represents a point in image-space or rectified-plane coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point2D) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Point2D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp linearly interpolates between a and b. t=0 returns a, t=1 returns b.
func Lerp(a, b Point2D, t float64) Point2D {
	return Point2D{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Line represents a line segment between two points. It is undirected for
// distance purposes.
type Line struct {
	Start Point2D `json:"start"`
	End   Point2D `json:"end"`
}

// Length returns the Euclidean length of the segment.
func (l Line) Length() float64 {
	return Distance(l.Start, l.End)
}

// Midpoint returns the point halfway along the segment.
func (l Line) Midpoint() Point2D {
	return Lerp(l.Start, l.End, 0.5)
}

// DistanceToSegment returns the perpendicular distance from p to the segment
// l, clamping the projection to the segment endpoints.
func DistanceToSegment(p Point2D, l Line) float64 {
	dx := l.End.X - l.Start.X
	dy := l.End.Y - l.Start.Y

	lenSq := dx*dx + dy*dy
	if lenSq < 1e-12 {
		// Degenerate segment, measure to the single point
		return Distance(p, l.Start)
	}

	t := ((p.X-l.Start.X)*dx + (p.Y-l.Start.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := Point2D{
		X: l.Start.X + t*dx,
		Y: l.Start.Y + t*dy,
	}
	return Distance(p, closest)
}
