package vision

import (
	"math"
	"sort"

	"github.com/avashisht/fretcoach/internal/geometry"
)

// Line detection tuning constants.
const (
	// edgeThreshold is the gradient magnitude above which a pixel counts as
	// an edge. Sobel responses on 8-bit input range up to ~1020.
	edgeThreshold = 100.0

	// minRunFraction is the fraction of the image span a run of edge pixels
	// must cover to count as a line candidate.
	minRunFraction = 0.3

	// mergeGap collapses candidates on adjacent rows/columns that belong to
	// the same physical edge (a thick fret produces edges on both sides).
	mergeGap = 3
)

// DetectResult holds the line candidates extracted from one frame and the
// detector's own confidence in them. Confidence below the localizer's gate
// means the caller should prefer manual calibration.
type DetectResult struct {
	Horizontal []geometry.Line
	Vertical   []geometry.Line
	Confidence float64
}

// Lines returns all candidates, horizontal first.
func (r DetectResult) Lines() []geometry.Line {
	out := make([]geometry.Line, 0, len(r.Horizontal)+len(r.Vertical))
	out = append(out, r.Horizontal...)
	out = append(out, r.Vertical...)
	return out
}

// DetectLines extracts horizontal and vertical line candidates from a
// downsampled grayscale frame.
//
// The edge map is a 3x3 Sobel gradient magnitude binarized at a fixed
// threshold. Horizontal candidates are runs of consecutive edge pixels along
// a row longer than 30% of the image width; vertical candidates use the same
// rule along columns against the image height.
func DetectLines(img *GrayImage) DetectResult {
	if img == nil || img.Width < 3 || img.Height < 3 {
		return DetectResult{}
	}

	edges := sobelEdges(img)

	horizontal := scanRows(edges, img.Width, img.Height)
	vertical := scanColumns(edges, img.Width, img.Height)

	return DetectResult{
		Horizontal: horizontal,
		Vertical:   vertical,
		Confidence: lineConfidence(horizontal, vertical),
	}
}

// sobelEdges computes the binarized gradient magnitude map.
func sobelEdges(img *GrayImage) []bool {
	w, h := img.Width, img.Height
	edges := make([]bool, w*h)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			tl := float64(img.Pix[(y-1)*w+x-1])
			tc := float64(img.Pix[(y-1)*w+x])
			tr := float64(img.Pix[(y-1)*w+x+1])
			ml := float64(img.Pix[y*w+x-1])
			mr := float64(img.Pix[y*w+x+1])
			bl := float64(img.Pix[(y+1)*w+x-1])
			bc := float64(img.Pix[(y+1)*w+x])
			br := float64(img.Pix[(y+1)*w+x+1])

			gx := (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy := (bl + 2*bc + br) - (tl + 2*tc + tr)

			if math.Sqrt(gx*gx+gy*gy) >= edgeThreshold {
				edges[y*w+x] = true
			}
		}
	}
	return edges
}

// scanRows finds the longest qualifying edge run per row, then merges rows
// that belong to the same physical edge.
func scanRows(edges []bool, w, h int) []geometry.Line {
	minRun := int(float64(w) * minRunFraction)
	if minRun < 2 {
		minRun = 2
	}

	var lines []geometry.Line
	lastY := -mergeGap - 1

	for y := 0; y < h; y++ {
		start, end, ok := longestRun(func(x int) bool { return edges[y*w+x] }, w, minRun)
		if !ok {
			continue
		}
		if y-lastY <= mergeGap {
			lastY = y
			continue
		}
		lastY = y
		lines = append(lines, geometry.Line{
			Start: geometry.Point2D{X: float64(start), Y: float64(y)},
			End:   geometry.Point2D{X: float64(end), Y: float64(y)},
		})
	}
	return lines
}

// scanColumns is the row scan transposed.
func scanColumns(edges []bool, w, h int) []geometry.Line {
	minRun := int(float64(h) * minRunFraction)
	if minRun < 2 {
		minRun = 2
	}

	var lines []geometry.Line
	lastX := -mergeGap - 1

	for x := 0; x < w; x++ {
		start, end, ok := longestRun(func(y int) bool { return edges[y*w+x] }, h, minRun)
		if !ok {
			continue
		}
		if x-lastX <= mergeGap {
			lastX = x
			continue
		}
		lastX = x
		lines = append(lines, geometry.Line{
			Start: geometry.Point2D{X: float64(x), Y: float64(start)},
			End:   geometry.Point2D{X: float64(x), Y: float64(end)},
		})
	}
	return lines
}

// longestRun returns the bounds of the longest run of consecutive true
// values along a scanline, provided it reaches minRun.
func longestRun(at func(i int) bool, length, minRun int) (start, end int, ok bool) {
	bestLen := 0
	runStart := -1

	for i := 0; i <= length; i++ {
		if i < length && at(i) {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 {
			if runLen := i - runStart; runLen > bestLen {
				bestLen = runLen
				start = runStart
				end = i - 1
			}
			runStart = -1
		}
	}

	return start, end, bestLen >= minRun
}

// lineConfidence rates how much a localizer should trust the candidates.
// Fewer than 4 total lines is worthless; fewer than 2 horizontal or 3
// vertical is a weak 0.3. Otherwise volume combines with the regularity of
// horizontal spacing, since evenly spaced fret bands are the strongest
// fretboard signal.
func lineConfidence(horizontal, vertical []geometry.Line) float64 {
	total := len(horizontal) + len(vertical)
	if total < 4 {
		return 0
	}
	if len(horizontal) < 2 || len(vertical) < 3 {
		return 0.3
	}

	volume := math.Min(float64(total)/20.0, 1.0)
	return volume*0.6 + spacingRegularity(horizontal)*0.4
}

// spacingRegularity measures how evenly spaced the horizontal lines are,
// from the y-sorted positions: max(0, 1 - stddev(spacing)/mean(spacing)).
func spacingRegularity(horizontal []geometry.Line) float64 {
	ys := make([]float64, len(horizontal))
	for i, l := range horizontal {
		ys[i] = l.Midpoint().Y
	}
	sort.Float64s(ys)

	spacings := make([]float64, 0, len(ys)-1)
	for i := 1; i < len(ys); i++ {
		spacings = append(spacings, ys[i]-ys[i-1])
	}
	if len(spacings) == 0 {
		return 0
	}

	var mean float64
	for _, s := range spacings {
		mean += s
	}
	mean /= float64(len(spacings))
	if mean <= 0 {
		return 0
	}

	var variance float64
	for _, s := range spacings {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(spacings))

	return math.Max(0, 1-math.Sqrt(variance)/mean)
}
