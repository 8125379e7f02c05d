package fretboard

import (
	"math"
	"sort"

	"github.com/avashisht/fretcoach/internal/geometry"
	"github.com/avashisht/fretcoach/internal/vision"
)

// Manual calibration constants. The operator taps the nut corners and the
// corners of a reference fret; by convention that is the 3rd fret, so the
// nut-to-reference distance covers three fret widths.
const (
	referenceFret     = 3
	extrapolatedFrets = 5
)

// Automatic localization constants.
const (
	// axisSlopeTolerance is the maximum endpoint deviation, in pixels, for a
	// detected line to count as axis-aligned.
	axisSlopeTolerance = 5.0

	// roiPadding is the margin added around the intersection bounding box.
	roiPadding = 10.0

	// defaultROIFraction sizes the centered fallback box when there are not
	// enough line intersections to bound the fretboard.
	defaultROIFraction = 0.6

	// minIntersections below which the fallback ROI is used.
	minIntersections = 4

	// maxAutoFrets caps how many detected fret bands the automatic mode keeps.
	maxAutoFrets = 5

	// minCornerArea is the smallest cross-product magnitude, in square
	// pixels, any three calibration corners may span. Below it the corners
	// are coincident or collinear and the plane solve would degenerate.
	minCornerArea = 1e-6
)

// unitSquare in the corner order used for all fretboard homographies:
// top-left, top-right, bottom-right, bottom-left. The nut (or ROI top) maps
// to v=0; the reference fret (or ROI bottom) to v=1.
func unitSquare() []geometry.Point2D {
	return []geometry.Point2D{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: 0, Y: 1},
	}
}

// CalibrateManual builds fretboard geometry from four operator-tapped
// points: the left and right ends of the nut, and the left and right ends of
// the reference (3rd) fret. The result carries a fixed high confidence since
// the operator verified the points.
//
// Invalid input (non-finite coordinates, or corners that are coincident or
// collinear) yields a zero-confidence geometry with the manual-calibration
// flag set, never an error.
func CalibrateManual(nutLeft, nutRight, refLeft, refRight geometry.Point2D) Geometry {
	for _, p := range []geometry.Point2D{nutLeft, nutRight, refLeft, refRight} {
		if !p.IsFinite() {
			return Geometry{NeedsManualCalibration: true}
		}
	}

	src := []geometry.Point2D{nutLeft, nutRight, refRight, refLeft}
	if degenerateCorners(src) {
		return Geometry{NeedsManualCalibration: true}
	}
	h, err := geometry.ComputeHomography(src, unitSquare())
	if err != nil {
		return Geometry{NeedsManualCalibration: true}
	}

	geom := Geometry{
		Homography: h,
		Confidence: manualConfidence,
	}

	// Six string lines spanning nut to reference fret, evenly spaced across
	// the neck width. Strings[0] holds string 1, on the nutLeft side.
	for i := 0; i < NumStrings; i++ {
		t := (float64(i) + 0.5) / NumStrings
		geom.Strings[i] = geometry.Line{
			Start: geometry.Lerp(nutLeft, nutRight, t),
			End:   geometry.Lerp(refLeft, refRight, t),
		}
	}

	// Fret lines 1..5 by linear extrapolation of the nut-to-reference
	// spacing: the reference fret is fret 3, so one fret spans a third of
	// the tapped distance.
	for k := 1; k <= extrapolatedFrets; k++ {
		t := float64(k) / referenceFret
		geom.Frets = append(geom.Frets, geometry.Line{
			Start: geometry.Lerp(nutLeft, refLeft, t),
			End:   geometry.Lerp(nutRight, refRight, t),
		})
	}

	roi := boundingROI(src, 0)
	geom.ROI = &roi

	return geom
}

// degenerateCorners reports whether any three of the four corners are
// coincident or collinear, which would make the plane solve singular.
func degenerateCorners(corners []geometry.Point2D) bool {
	for i := 0; i < len(corners); i++ {
		for j := i + 1; j < len(corners); j++ {
			for k := j + 1; k < len(corners); k++ {
				a, b, c := corners[i], corners[j], corners[k]
				cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
				if math.Abs(cross) < minCornerArea {
					return true
				}
			}
		}
	}
	return false
}

// LocateAuto estimates fretboard geometry from a downsampled frame using the
// heuristic line detector. When the detector's confidence is below the gate
// the result is zero-confidence with the manual-calibration flag set;
// otherwise the detector's confidence is forwarded as the geometry's.
func LocateAuto(img *vision.GrayImage) Geometry {
	det := vision.DetectLines(img)
	if det.Confidence < autoDetectGate {
		return Geometry{NeedsManualCalibration: true}
	}

	horizontal, vertical := partitionByAxis(det.Lines())

	roi := intersectionROI(horizontal, vertical, img.Width, img.Height)

	corners := []geometry.Point2D{
		{X: roi.X, Y: roi.Y},
		{X: roi.X + roi.Width, Y: roi.Y},
		{X: roi.X + roi.Width, Y: roi.Y + roi.Height},
		{X: roi.X, Y: roi.Y + roi.Height},
	}
	h, err := geometry.ComputeHomography(corners, unitSquare())
	if err != nil {
		return Geometry{NeedsManualCalibration: true}
	}

	geom := Geometry{
		Homography: h,
		Confidence: det.Confidence,
		ROI:        &roi,

		NeedsManualCalibration: det.Confidence < ReliableConfidence,
	}

	// Six evenly spaced string lines across the ROI.
	for i := 0; i < NumStrings; i++ {
		x := roi.X + (float64(i)+0.5)/NumStrings*roi.Width
		geom.Strings[i] = geometry.Line{
			Start: geometry.Point2D{X: x, Y: roi.Y},
			End:   geometry.Point2D{X: x, Y: roi.Y + roi.Height},
		}
	}

	// Up to five horizontal fret bands found inside the ROI, top to bottom.
	var frets []geometry.Line
	for _, l := range horizontal {
		if mid := l.Midpoint(); roi.Contains(mid) {
			frets = append(frets, l)
		}
	}
	sort.Slice(frets, func(i, j int) bool {
		return frets[i].Midpoint().Y < frets[j].Midpoint().Y
	})
	if len(frets) > maxAutoFrets {
		frets = frets[:maxAutoFrets]
	}
	geom.Frets = frets

	return geom
}

// partitionByAxis splits lines into horizontal and vertical groups by how
// far their endpoints deviate from axis alignment. Oblique lines are
// discarded.
func partitionByAxis(lines []geometry.Line) (horizontal, vertical []geometry.Line) {
	for _, l := range lines {
		dy := l.End.Y - l.Start.Y
		dx := l.End.X - l.Start.X
		if dy < 0 {
			dy = -dy
		}
		if dx < 0 {
			dx = -dx
		}

		switch {
		case dy <= axisSlopeTolerance:
			horizontal = append(horizontal, l)
		case dx <= axisSlopeTolerance:
			vertical = append(vertical, l)
		}
	}
	return horizontal, vertical
}

// intersectionROI bounds the crossings of horizontal and vertical lines,
// padded by a fixed margin. With too few crossings it falls back to a
// centered box covering 60% of the frame in each dimension.
func intersectionROI(horizontal, vertical []geometry.Line, width, height int) ROI {
	var points []geometry.Point2D
	for _, h := range horizontal {
		hy := h.Midpoint().Y
		x0, x1 := spanOf(h.Start.X, h.End.X)
		for _, v := range vertical {
			vx := v.Midpoint().X
			y0, y1 := spanOf(v.Start.Y, v.End.Y)
			if vx >= x0-axisSlopeTolerance && vx <= x1+axisSlopeTolerance &&
				hy >= y0-axisSlopeTolerance && hy <= y1+axisSlopeTolerance {
				points = append(points, geometry.Point2D{X: vx, Y: hy})
			}
		}
	}

	if len(points) < minIntersections {
		w := float64(width) * defaultROIFraction
		h := float64(height) * defaultROIFraction
		return ROI{
			X:      (float64(width) - w) / 2,
			Y:      (float64(height) - h) / 2,
			Width:  w,
			Height: h,
		}
	}

	roi := boundingROI(points, roiPadding)

	// Clamp to the frame
	if roi.X < 0 {
		roi.Width += roi.X
		roi.X = 0
	}
	if roi.Y < 0 {
		roi.Height += roi.Y
		roi.Y = 0
	}
	if roi.X+roi.Width > float64(width) {
		roi.Width = float64(width) - roi.X
	}
	if roi.Y+roi.Height > float64(height) {
		roi.Height = float64(height) - roi.Y
	}
	return roi
}

// boundingROI returns the padded bounding box of a point set.
func boundingROI(points []geometry.Point2D, padding float64) ROI {
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return ROI{
		X:      minX - padding,
		Y:      minY - padding,
		Width:  maxX - minX + 2*padding,
		Height: maxY - minY + 2*padding,
	}
}

// spanOf orders two scalars.
func spanOf(a, b float64) (lo, hi float64) {
	if a <= b {
		return a, b
	}
	return b, a
}
