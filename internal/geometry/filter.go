package geometry

import "math"

// Default One-Euro filter parameters. MinCutoff trades jitter for lag at low
// speeds; Beta scales how fast the cutoff opens up as the signal moves.
const (
	DefaultMinCutoff = 1.0
	DefaultBeta      = 0.007
	derivativeCutoff = 1.0
)

// OneEuroFilter is an adaptive low-pass filter for a single scalar stream.
// Fast movement raises the cutoff, trading smoothing for responsiveness;
// slow movement lowers it, suppressing detector jitter.
type OneEuroFilter struct {
	minCutoff float64
	beta      float64

	initialized bool
	value       float64
	derivative  float64
	lastTime    float64
}

// NewOneEuroFilter creates a filter with the given minimum cutoff frequency
// (Hz) and speed coefficient. Non-positive arguments fall back to defaults.
func NewOneEuroFilter(minCutoff, beta float64) *OneEuroFilter {
	if minCutoff <= 0 {
		minCutoff = DefaultMinCutoff
	}
	if beta <= 0 {
		beta = DefaultBeta
	}
	return &OneEuroFilter{minCutoff: minCutoff, beta: beta}
}

// Filter smooths one sample taken at t seconds. The first sample initializes
// the state and is returned unchanged. A non-positive time step skips the
// update and returns the last filtered value.
func (f *OneEuroFilter) Filter(value, t float64) float64 {
	if !f.initialized {
		f.initialized = true
		f.value = value
		f.derivative = 0
		f.lastTime = t
		return value
	}

	dt := t - f.lastTime
	if dt <= 0 {
		return f.value
	}
	f.lastTime = t

	// Smooth the derivative estimate with a fixed cutoff
	rawDerivative := (value - f.value) / dt
	f.derivative = exponentialSmooth(rawDerivative, f.derivative, smoothingAlpha(derivativeCutoff, dt))

	// Adaptive cutoff: faster movement opens the filter up
	cutoff := f.minCutoff + f.beta*math.Abs(f.derivative)
	f.value = exponentialSmooth(value, f.value, smoothingAlpha(cutoff, dt))

	return f.value
}

// Reset clears the filter state. The next sample reinitializes it. Used when
// hand tracking is lost or the session restarts.
func (f *OneEuroFilter) Reset() {
	f.initialized = false
	f.value = 0
	f.derivative = 0
	f.lastTime = 0
}

// smoothingAlpha computes the exponential smoothing coefficient for a cutoff
// frequency and time step: alpha = 1 / (1 + tau/dt), tau = 1/(2*pi*cutoff).
func smoothingAlpha(cutoff, dt float64) float64 {
	tau := 1.0 / (2 * math.Pi * cutoff)
	return 1.0 / (1.0 + tau/dt)
}

func exponentialSmooth(value, prev, alpha float64) float64 {
	return alpha*value + (1-alpha)*prev
}
