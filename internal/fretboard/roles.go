package fretboard

import (
	"github.com/avashisht/fretcoach/internal/detector"
	"github.com/avashisht/fretcoach/internal/geometry"
)

// HandRole labels what a detected hand is doing.
type HandRole string

const (
	RoleFretting  HandRole = "fretting"
	RoleStrumming HandRole = "strumming"
)

// frettingKeypointMajority is the in-ROI keypoint count above which a lone
// hand is considered fretting.
const frettingKeypointMajority = 10

// RoleAssignment holds the indices of the classified hands within the input
// slice; -1 means no hand holds that role.
type RoleAssignment struct {
	Fretting  int `json:"fretting"`
	Strumming int `json:"strumming"`
}

// AssignRoles classifies up to two detected hands into fretting and
// strumming roles by how many of their keypoints fall inside the fretboard
// region of interest. With no ROI every count is zero and the wrist-distance
// tie-break decides.
func AssignRoles(hands []detector.HandLandmarks, roi *ROI) RoleAssignment {
	out := RoleAssignment{Fretting: -1, Strumming: -1}

	switch len(hands) {
	case 0:
		return out

	case 1:
		if keypointsInROI(&hands[0], roi) > frettingKeypointMajority {
			out.Fretting = 0
		} else {
			out.Strumming = 0
		}
		return out

	default:
		// Only the first two hands are considered
		countA := keypointsInROI(&hands[0], roi)
		countB := keypointsInROI(&hands[1], roi)

		fretting := 0
		switch {
		case countA > countB:
			fretting = 0
		case countB > countA:
			fretting = 1
		default:
			// Tie: the wrist closer to the ROI center frets
			center := roiCenter(roi)
			distA := geometry.Distance(hands[0].Points[detector.Wrist], center)
			distB := geometry.Distance(hands[1].Points[detector.Wrist], center)
			if distB < distA {
				fretting = 1
			}
		}

		out.Fretting = fretting
		out.Strumming = 1 - fretting
		return out
	}
}

// keypointsInROI counts how many of the hand's 21 keypoints fall inside the
// region. A nil ROI contains nothing.
func keypointsInROI(hand *detector.HandLandmarks, roi *ROI) int {
	if roi == nil {
		return 0
	}
	count := 0
	for _, p := range hand.Points {
		if roi.Contains(p) {
			count++
		}
	}
	return count
}

// roiCenter returns the region center, or the origin when no ROI exists so
// the tie-break stays deterministic.
func roiCenter(roi *ROI) geometry.Point2D {
	if roi == nil {
		return geometry.Point2D{}
	}
	return roi.Center()
}
