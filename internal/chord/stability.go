package chord

import "time"

// Stability defaults.
const (
	// DefaultStabilityThreshold is the score a grip must reach for its hold
	// time to accumulate.
	DefaultStabilityThreshold = 0.85

	// DefaultRequiredStableMs is how long a grip must stay above threshold
	// to count as successfully held.
	DefaultRequiredStableMs = 2000.0
)

// StabilityTracker accumulates how long a chord's score has stayed above
// threshold. It is a value type: Update returns the advanced tracker and the
// caller replaces its single owned copy, so no two components ever alias the
// same accumulator. The owner must replace it with a fresh tracker whenever
// the target chord changes.
type StabilityTracker struct {
	Score            float64 `json:"score"`
	StableMs         float64 `json:"stableMs"`
	LastUpdateMs     int64   `json:"-"`
	Threshold        float64 `json:"threshold"`
	RequiredStableMs float64 `json:"requiredStableMs"`
}

// NewStabilityTracker returns a tracker with default thresholds.
func NewStabilityTracker() StabilityTracker {
	return StabilityTracker{
		Threshold:        DefaultStabilityThreshold,
		RequiredStableMs: DefaultRequiredStableMs,
	}
}

// Update advances the tracker with a new score at the given time. Scores at
// or above threshold accumulate the elapsed interval; a single dip resets
// the accumulated duration to zero.
func (t StabilityTracker) Update(score float64, now time.Time) StabilityTracker {
	nowMs := now.UnixMilli()

	elapsed := float64(0)
	if t.LastUpdateMs != 0 && nowMs > t.LastUpdateMs {
		elapsed = float64(nowMs - t.LastUpdateMs)
	}

	t.Score = score
	t.LastUpdateMs = nowMs
	if score >= t.Threshold {
		t.StableMs += elapsed
	} else {
		t.StableMs = 0
	}
	return t
}

// IsStable reports whether the chord has been held above threshold for the
// required duration.
func (t StabilityTracker) IsStable() bool {
	return t.StableMs >= t.RequiredStableMs
}
