// Package fretboard estimates the fretboard plane from camera frames and
// maps fingertip observations onto (string, fret) coordinates.
package fretboard

import "github.com/avashisht/fretcoach/internal/geometry"

// Confidence thresholds for fretboard geometry.
const (
	// ReliableConfidence is the bar below which a geometry estimate must be
	// treated as unreliable and manual calibration preferred.
	ReliableConfidence = 0.7

	// autoDetectGate is the line-detector confidence required before the
	// automatic localizer trusts the heuristic result at all.
	autoDetectGate = 0.6

	// manualConfidence is assigned to operator-verified calibrations.
	manualConfidence = 0.9
)

// NumStrings is fixed for a standard guitar. String 1 is the highest-pitched
// string, string 6 the lowest.
const NumStrings = 6

// ROI is the image-space bounding rectangle estimated to contain the
// fretboard.
type ROI struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of the region.
func (r ROI) Center() geometry.Point2D {
	return geometry.Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p falls inside the region.
func (r ROI) Contains(p geometry.Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Geometry is one fretboard plane estimate: the image-to-rectified-plane
// homography, the string and fret lines in image space, and how much the
// estimate can be trusted. When Confidence is below ReliableConfidence the
// geometry is unreliable and NeedsManualCalibration is set.
type Geometry struct {
	Homography geometry.Homography       `json:"homography"`
	Strings    [NumStrings]geometry.Line `json:"strings"`
	Frets      []geometry.Line           `json:"frets"`
	Confidence float64                   `json:"confidence"`
	ROI        *ROI                      `json:"roi,omitempty"`

	// NeedsManualCalibration signals that the heuristic estimate is too weak
	// and the operator should tap the four calibration points instead. Low
	// confidence is a value, never an error.
	NeedsManualCalibration bool `json:"needsManualCalibration"`
}

// Usable reports whether the geometry can drive fingertip mapping at all.
func (g Geometry) Usable() bool {
	return g.Homography.Valid() && g.Confidence > 0
}

// Scaled maps a geometry estimated on a downsampled image back to full-frame
// pixel coordinates. factor is fullWidth/detectWidth. The homography is
// composed with the inverse scale so it still maps full-frame points onto
// the rectified plane.
func (g Geometry) Scaled(factor float64) Geometry {
	if factor == 1 || factor <= 0 {
		return g
	}

	out := g
	for i := range out.Strings {
		out.Strings[i] = scaleLine(g.Strings[i], factor)
	}
	out.Frets = make([]geometry.Line, len(g.Frets))
	for i := range g.Frets {
		out.Frets[i] = scaleLine(g.Frets[i], factor)
	}
	if g.ROI != nil {
		roi := ROI{
			X:      g.ROI.X * factor,
			Y:      g.ROI.Y * factor,
			Width:  g.ROI.Width * factor,
			Height: g.ROI.Height * factor,
		}
		out.ROI = &roi
	}
	if g.Homography.Valid() {
		m := g.Homography.Matrix()
		inv := 1 / factor
		for row := 0; row < 3; row++ {
			m[row][0] *= inv
			m[row][1] *= inv
		}
		out.Homography = geometry.HomographyFromMatrix(m)
	}
	return out
}

func scaleLine(l geometry.Line, factor float64) geometry.Line {
	return geometry.Line{
		Start: geometry.Point2D{X: l.Start.X * factor, Y: l.Start.Y * factor},
		End:   geometry.Point2D{X: l.End.X * factor, Y: l.End.Y * factor},
	}
}
