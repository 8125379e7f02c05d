package fretboard

import (
	"math"
	"sort"

	"github.com/avashisht/fretcoach/internal/geometry"
)

// Mapper tuning constants.
const (
	// assignmentDistanceScale normalizes string/fret distances, measured in
	// rectified-plane units, into the confidence formula. Placements within
	// this distance of their line score near 1.
	assignmentDistanceScale = 0.1

	// orderingDiscount is applied to both members of an anatomically
	// implausible finger ordering.
	orderingDiscount = 0.8
)

// FingerAssignment places one fingertip on the fretboard. FretIdx 0 means
// the finger sits on the open side of the nut (not pressing a fret); a
// FretIdx equal to the number of fret lines is the "above the highest
// covered fret" sentinel.
type FingerAssignment struct {
	FingerID   int              `json:"fingerId"`  // 0 = thumb .. 4 = pinky
	StringIdx  int              `json:"stringIdx"` // 1 = highest pitched .. 6 = lowest
	FretIdx    int              `json:"fretIdx"`
	Confidence float64          `json:"confidence"`
	Position   geometry.Point2D `json:"position"` // rectified-plane coordinates
}

// MapFingertips projects the five fingertip positions through the fretboard
// homography and assigns each a (string, fret) coordinate. Returns nil when
// the geometry holds no valid homography.
//
// String assignment is the argmin of perpendicular distance to the six
// rectified string lines. Fret assignment buckets the along-neck coordinate
// into the band between consecutive fret lines, with the nut at zero.
func MapFingertips(geom Geometry, tips [5]geometry.Point2D) []FingerAssignment {
	if !geom.Homography.Valid() {
		return nil
	}

	// Project the geometry's own lines into the rectified plane so both
	// calibration modes measure distances in the same units.
	var strings [NumStrings]geometry.Line
	for i, s := range geom.Strings {
		strings[i] = geometry.Line{
			Start: geom.Homography.Apply(s.Start),
			End:   geom.Homography.Apply(s.End),
		}
	}

	fretVs := make([]float64, 0, len(geom.Frets))
	for _, f := range geom.Frets {
		mid := geometry.Line{
			Start: geom.Homography.Apply(f.Start),
			End:   geom.Homography.Apply(f.End),
		}.Midpoint()
		fretVs = append(fretVs, mid.Y)
	}
	sort.Float64s(fretVs)

	assignments := make([]FingerAssignment, 0, len(tips))
	for fingerID, tip := range tips {
		p := geom.Homography.Apply(tip)

		stringIdx, stringDist := nearestString(p, strings)
		fretIdx, fretDist := fretBand(p.Y, fretVs)

		confidence := 1 - (stringDist/assignmentDistanceScale+fretDist/assignmentDistanceScale)/2
		if confidence < 0 {
			confidence = 0
		}

		assignments = append(assignments, FingerAssignment{
			FingerID:   fingerID,
			StringIdx:  stringIdx,
			FretIdx:    fretIdx,
			Confidence: confidence,
			Position:   p,
		})
	}

	discountImplausibleOrderings(assignments)

	return assignments
}

// nearestString returns the 1-indexed closest string line and the distance
// to it.
func nearestString(p geometry.Point2D, strings [NumStrings]geometry.Line) (int, float64) {
	best := 0
	bestDist := math.Inf(1)
	for i, s := range strings {
		if d := geometry.DistanceToSegment(p, s); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best + 1, bestDist
}

// fretBand buckets the along-neck coordinate v into a fret band. Band k sits
// between fret lines k-1 and k, with the nut as line 0; at or behind the nut
// is band 0 (open side). Past the last covered fret line the band index
// equals the number of fret lines, a sentinel rather than a real fret.
func fretBand(v float64, fretVs []float64) (int, float64) {
	if len(fretVs) == 0 {
		return 0, 0
	}
	if v <= 0 {
		return 0, -v
	}

	passed := 0
	for _, f := range fretVs {
		if f < v {
			passed++
		}
	}

	band := passed + 1
	if band > len(fretVs) {
		last := fretVs[len(fretVs)-1]
		return len(fretVs), v - last
	}

	lower := 0.0
	if band > 1 {
		lower = fretVs[band-2]
	}
	center := (lower + fretVs[band-1]) / 2
	return band, math.Abs(v - center)
}

// discountImplausibleOrderings lowers the confidence of finger pairs whose
// string ordering contradicts hand anatomy: a lower finger ID sitting on a
// higher string index than a higher finger ID. The assignments themselves
// are left untouched; silently reordering could mask real detection
// failures, so this only signals lower trust.
func discountImplausibleOrderings(assignments []FingerAssignment) {
	order := make([]int, len(assignments))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return assignments[order[i]].StringIdx < assignments[order[j]].StringIdx
	})

	for i := 0; i+1 < len(order); i++ {
		a := &assignments[order[i]]
		b := &assignments[order[i+1]]
		if a.StringIdx == b.StringIdx {
			continue
		}
		// b sits on the higher string; its finger ID should not be lower
		if b.FingerID < a.FingerID {
			a.Confidence *= orderingDiscount
			b.Confidence *= orderingDiscount
		}
	}
}
