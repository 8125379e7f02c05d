// Package chord defines chord shape templates, scores observed finger
// placements against them, and tracks how long a grip has been held.
package chord

// ConstraintKind says what a chord shape demands of one string.
type ConstraintKind string

const (
	// Muted strings should not ring; muting cannot be reliably observed
	// from fingertip geometry, so it is scored as mostly satisfied.
	Muted ConstraintKind = "muted"
	// Open strings ring unfretted; any finger pressing a fret blocks them.
	Open ConstraintKind = "open"
	// Fretted strings need a specific finger at a specific fret.
	Fretted ConstraintKind = "fretted"
)

// StringConstraint is the demand a template places on one string.
// Fret and Finger are meaningful only for the Fretted kind.
type StringConstraint struct {
	Kind   ConstraintKind `json:"kind"`
	Fret   int            `json:"fret,omitempty"`
	Finger int            `json:"finger,omitempty"` // 0 = thumb .. 4 = pinky
}

// Template is a named chord shape: at most one constraint per string,
// keyed by string index 1 (highest pitched) through 6 (lowest). A string
// with no entry is unconstrained.
type Template struct {
	Name    string                   `json:"name"`
	Strings map[int]StringConstraint `json:"strings"`
}

// fretted is a shorthand constructor used by the catalog.
func fretted(fret, finger int) StringConstraint {
	return StringConstraint{Kind: Fretted, Fret: fret, Finger: finger}
}
