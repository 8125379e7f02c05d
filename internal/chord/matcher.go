package chord

import (
	"fmt"
	"math"

	"github.com/avashisht/fretcoach/internal/fretboard"
)

// Scoring constants.
const (
	// mutedWeight is the partial credit a muted string earns: muting cannot
	// be observed from fingertip geometry, so it never fully counts against
	// the player either way.
	mutedWeight = 0.6

	// fretTolerance is how far an observed fret may sit from the target
	// fret and still satisfy a fretted constraint.
	fretTolerance = 0.5

	// extraFingerPenalty is deducted per finger on a muted string or at the
	// wrong fret of a fretted string, capped at maxExtraFingerPenalty.
	extraFingerPenalty    = 0.05
	maxExtraFingerPenalty = 0.2
)

// StringResult explains how one string scored.
type StringResult struct {
	OK       bool   `json:"ok"`
	Reason   string `json:"reason,omitempty"`
	FingerID int    `json:"fingerId"` // -1 when no finger contributed
}

// MatchResult is the outcome of scoring finger assignments against a chord
// template.
type MatchResult struct {
	Score       float64              `json:"score"`
	PerString   map[int]StringResult `json:"perString"`
	StabilityMs float64              `json:"stabilityMs"`
}

// Match scores the observed finger assignments against a chord template.
//
// Each of the six strings contributes up to one point: unconstrained strings
// count as satisfied, muted strings earn partial credit, open strings are
// satisfied unless a finger presses a fret on them, and fretted strings need
// the best finger on that string within tolerance of the target fret. Extra
// fingers on muted strings or at wrong frets deduct a capped penalty.
func Match(tmpl *Template, assignments []fretboard.FingerAssignment) MatchResult {
	result := MatchResult{
		PerString: make(map[int]StringResult, 6),
	}

	var raw float64
	for stringIdx := 1; stringIdx <= 6; stringIdx++ {
		constraint, constrained := tmpl.Strings[stringIdx]
		if !constrained {
			raw += 1
			result.PerString[stringIdx] = StringResult{OK: true, FingerID: -1}
			continue
		}

		switch constraint.Kind {
		case Muted:
			raw += mutedWeight
			result.PerString[stringIdx] = StringResult{
				OK:       true,
				Reason:   "muting not observable",
				FingerID: -1,
			}

		case Open:
			if blocker := frettingFingerOn(assignments, stringIdx); blocker != nil {
				result.PerString[stringIdx] = StringResult{
					OK:       false,
					Reason:   fmt.Sprintf("open string blocked at fret %d", blocker.FretIdx),
					FingerID: blocker.FingerID,
				}
			} else {
				raw += 1
				result.PerString[stringIdx] = StringResult{OK: true, FingerID: -1}
			}

		case Fretted:
			best := bestAssignmentOn(assignments, stringIdx)
			switch {
			case best == nil:
				// No finger is pressing the string. One resting at fret 0
				// (behind the nut) is reported as a wrong fret rather than
				// a missing finger; either way the string is unsatisfied.
				res := StringResult{
					OK:       false,
					Reason:   "missing finger",
					FingerID: -1,
				}
				if open := openFingerOn(assignments, stringIdx); open != nil {
					res.Reason = fmt.Sprintf("wrong fret: expected %d, got 0", constraint.Fret)
					res.FingerID = open.FingerID
				}
				result.PerString[stringIdx] = res
			case math.Abs(float64(best.FretIdx)-float64(constraint.Fret)) <= fretTolerance:
				raw += 1
				result.PerString[stringIdx] = StringResult{OK: true, FingerID: best.FingerID}
			default:
				result.PerString[stringIdx] = StringResult{
					OK: false,
					Reason: fmt.Sprintf("wrong fret: expected %d, got %d",
						constraint.Fret, best.FretIdx),
					FingerID: best.FingerID,
				}
			}
		}
	}

	score := raw/6 - extraFingerPenaltyFor(tmpl, assignments)
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	result.Score = score

	return result
}

// frettingFingerOn returns an assignment pressing a fret (fret >= 1) on the
// given string, or nil.
func frettingFingerOn(assignments []fretboard.FingerAssignment, stringIdx int) *fretboard.FingerAssignment {
	for i := range assignments {
		a := &assignments[i]
		if a.StringIdx == stringIdx && a.FretIdx >= 1 {
			return a
		}
	}
	return nil
}

// openFingerOn returns the highest-confidence assignment resting at fret 0
// on the given string, or nil.
func openFingerOn(assignments []fretboard.FingerAssignment, stringIdx int) *fretboard.FingerAssignment {
	var best *fretboard.FingerAssignment
	for i := range assignments {
		a := &assignments[i]
		if a.StringIdx != stringIdx || a.FretIdx >= 1 {
			continue
		}
		if best == nil || a.Confidence > best.Confidence {
			best = a
		}
	}
	return best
}

// bestAssignmentOn returns the highest-confidence assignment on the given
// string, or nil when no finger maps to it. Fingers resting on the open
// side of the nut are not pressing anything.
func bestAssignmentOn(assignments []fretboard.FingerAssignment, stringIdx int) *fretboard.FingerAssignment {
	var best *fretboard.FingerAssignment
	for i := range assignments {
		a := &assignments[i]
		if a.StringIdx != stringIdx || a.FretIdx < 1 {
			continue
		}
		if best == nil || a.Confidence > best.Confidence {
			best = a
		}
	}
	return best
}

// extraFingerPenaltyFor deducts for fingers sitting where the shape says
// they should not be: on a muted string, or at the wrong fret of a fretted
// string.
func extraFingerPenaltyFor(tmpl *Template, assignments []fretboard.FingerAssignment) float64 {
	var penalty float64
	for i := range assignments {
		a := &assignments[i]
		if a.FretIdx < 1 {
			continue
		}
		constraint, ok := tmpl.Strings[a.StringIdx]
		if !ok {
			continue
		}
		switch constraint.Kind {
		case Muted:
			penalty += extraFingerPenalty
		case Fretted:
			if math.Abs(float64(a.FretIdx)-float64(constraint.Fret)) > fretTolerance {
				penalty += extraFingerPenalty
			}
		}
	}

	if penalty > maxExtraFingerPenalty {
		penalty = maxExtraFingerPenalty
	}
	return penalty
}
