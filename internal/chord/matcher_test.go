package chord

import (
	"math"
	"strings"
	"testing"

	"github.com/avashisht/fretcoach/internal/fretboard"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// place is a shorthand for a confident finger assignment.
func place(finger, stringIdx, fret int) fretboard.FingerAssignment {
	return fretboard.FingerAssignment{
		FingerID:   finger,
		StringIdx:  stringIdx,
		FretIdx:    fret,
		Confidence: 0.95,
	}
}

// eMajorGrip returns the three fretted fingers of an E major shape.
func eMajorGrip() []fretboard.FingerAssignment {
	return []fretboard.FingerAssignment{
		place(1, 3, 1), // index on G string fret 1
		place(2, 5, 2), // middle on A string fret 2
		place(3, 4, 2), // ring on D string fret 2
	}
}

func mustLookup(t *testing.T, name string) *Template {
	t.Helper()
	tmpl, ok := NewCatalog().Lookup(name)
	if !ok {
		t.Fatalf("catalog is missing %q", name)
	}
	return tmpl
}

func TestMatch_PerfectGripScoresHigh(t *testing.T) {
	tmpl := mustLookup(t, "E")

	result := Match(tmpl, eMajorGrip())

	if result.Score < 0.8 {
		t.Errorf("exact grip should score at least 0.8, got %f", result.Score)
	}
	for stringIdx := 1; stringIdx <= 6; stringIdx++ {
		if !result.PerString[stringIdx].OK {
			t.Errorf("string %d should be satisfied: %+v", stringIdx, result.PerString[stringIdx])
		}
	}
}

func TestMatch_WrongFretLowersScore(t *testing.T) {
	tmpl := mustLookup(t, "E")

	exact := Match(tmpl, eMajorGrip())

	shifted := eMajorGrip()
	shifted[0].FretIdx = 2 // index drifted to fret 2 on the G string

	wrong := Match(tmpl, shifted)

	if wrong.Score >= exact.Score {
		t.Errorf("wrong fret must strictly lower the score: %f vs %f", wrong.Score, exact.Score)
	}
	res := wrong.PerString[3]
	if res.OK {
		t.Error("string with a wrong fret must not be satisfied")
	}
	if !strings.Contains(res.Reason, "wrong fret: expected 1, got 2") {
		t.Errorf("unexpected reason: %q", res.Reason)
	}
}

func TestMatch_OmittedFingersScoreLow(t *testing.T) {
	tmpl := mustLookup(t, "E")

	// Only the middle finger lands; the index and ring miss their strings
	// and sit at fret 3 on the G string instead.
	sloppy := []fretboard.FingerAssignment{
		place(2, 5, 2),
		place(1, 3, 3),
		place(3, 3, 3),
	}

	result := Match(tmpl, sloppy)

	if result.Score >= 0.6 {
		t.Errorf("two of three fretted strings unsatisfied should score below 0.6, got %f", result.Score)
	}
	if result.PerString[4].OK {
		t.Error("D string has no finger and must be unsatisfied")
	}
	if result.PerString[4].Reason != "missing finger" {
		t.Errorf("expected missing-finger reason, got %q", result.PerString[4].Reason)
	}
}

func TestMatch_OpenStringsSatisfiedWithFretZeroFinger(t *testing.T) {
	tmpl := mustLookup(t, "Em")

	grip := []fretboard.FingerAssignment{
		place(2, 5, 2),
		place(3, 4, 2),
		place(1, 3, 0), // resting on the open side of the nut
	}

	result := Match(tmpl, grip)

	if !result.PerString[3].OK {
		t.Error("a finger at fret 0 must not block an open string")
	}
	if result.Score < 0.9 {
		t.Errorf("clean Em should score near 1, got %f", result.Score)
	}
}

func TestMatch_FrettedStringWithFingerBehindNut(t *testing.T) {
	tmpl := mustLookup(t, "E")

	// The index lifted off the G string and rests behind the nut.
	grip := []fretboard.FingerAssignment{
		place(1, 3, 0),
		place(2, 5, 2),
		place(3, 4, 2),
	}

	result := Match(tmpl, grip)

	res := result.PerString[3]
	if res.OK {
		t.Error("a fretted string with the finger behind the nut must be unsatisfied")
	}
	if !strings.Contains(res.Reason, "wrong fret: expected 1, got 0") {
		t.Errorf("expected a wrong-fret reason naming fret 0, got %q", res.Reason)
	}
	if res.FingerID != 1 {
		t.Errorf("expected the resting finger to be identified, got %d", res.FingerID)
	}

	// The resting finger is not an extra-finger deduction; the string simply
	// does not count.
	exact := Match(tmpl, eMajorGrip())
	if want := exact.Score - 1.0/6; !almostEqual(result.Score, want) {
		t.Errorf("expected exactly one lost string, got %f want %f", result.Score, want)
	}
}

func TestMatch_OpenStringBlockedByFrettingFinger(t *testing.T) {
	tmpl := mustLookup(t, "Em")

	grip := []fretboard.FingerAssignment{
		place(2, 5, 2),
		place(3, 4, 2),
		place(1, 1, 2), // pressing the high E string, which should ring open
	}

	result := Match(tmpl, grip)

	res := result.PerString[1]
	if res.OK {
		t.Error("a fretting finger blocks the open string")
	}
	if !strings.Contains(res.Reason, "blocked") {
		t.Errorf("unexpected reason: %q", res.Reason)
	}
	if res.FingerID != 1 {
		t.Errorf("expected the blocking finger to be reported, got %d", res.FingerID)
	}
}

func TestMatch_MutedStringPartialCredit(t *testing.T) {
	tmpl := mustLookup(t, "C")

	// Full C grip
	grip := []fretboard.FingerAssignment{
		place(3, 5, 3),
		place(2, 4, 2),
		place(1, 2, 1),
	}

	result := Match(tmpl, grip)

	// 5 satisfied strings + 0.6 for the muted low E, no penalties
	want := (5 + 0.6) / 6
	if diff := result.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected score %f, got %f", want, result.Score)
	}
	if !result.PerString[6].OK {
		t.Error("muted string counts as satisfied")
	}
}

func TestMatch_ExtraFingerOnMutedStringPenalized(t *testing.T) {
	tmpl := mustLookup(t, "C")

	grip := []fretboard.FingerAssignment{
		place(3, 5, 3),
		place(2, 4, 2),
		place(1, 2, 1),
		place(4, 6, 3), // pinky pressing the muted low E
	}

	withExtra := Match(tmpl, grip)
	clean := Match(tmpl, grip[:3])

	if diff := clean.Score - withExtra.Score - 0.05; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected a 0.05 penalty, got scores %f vs %f", clean.Score, withExtra.Score)
	}
}

func TestMatch_PenaltyCapped(t *testing.T) {
	tmpl := &Template{
		Name: "all-muted",
		Strings: map[int]StringConstraint{
			1: {Kind: Muted}, 2: {Kind: Muted}, 3: {Kind: Muted},
			4: {Kind: Muted}, 5: {Kind: Muted}, 6: {Kind: Muted},
		},
	}

	grip := []fretboard.FingerAssignment{
		place(0, 1, 1), place(1, 2, 1), place(2, 3, 1),
		place(3, 4, 1), place(4, 5, 1),
	}

	result := Match(tmpl, grip)

	// Raw 0.6, penalty would be 0.25 but caps at 0.2
	want := 0.6 - 0.2
	if diff := result.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected capped score %f, got %f", want, result.Score)
	}
}

func TestMatch_UnconstrainedStringsSatisfied(t *testing.T) {
	tmpl := &Template{
		Name:    "partial",
		Strings: map[int]StringConstraint{3: fretted(2, 2)},
	}

	result := Match(tmpl, []fretboard.FingerAssignment{place(2, 3, 2)})

	if result.Score != 1 {
		t.Errorf("absent constraints count as satisfied, expected 1, got %f", result.Score)
	}
}

func TestMatch_HighestConfidenceFingerWins(t *testing.T) {
	tmpl := mustLookup(t, "Em")

	wrong := place(1, 5, 4)
	wrong.Confidence = 0.3
	right := place(2, 5, 2)
	right.Confidence = 0.9

	result := Match(tmpl, []fretboard.FingerAssignment{
		wrong, right, place(3, 4, 2),
	})

	res := result.PerString[5]
	if !res.OK {
		t.Errorf("highest-confidence finger is on the target fret: %+v", res)
	}
	if res.FingerID != 2 {
		t.Errorf("expected finger 2 to be credited, got %d", res.FingerID)
	}
}
