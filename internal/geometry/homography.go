package geometry

import (
	"encoding/json"
	"errors"
	"math"
)

// ErrInvalidPointCount is returned when a homography is requested from point
// sets that are not exactly four points each. This indicates a programming
// mistake by the caller, not runtime noise.
var ErrInvalidPointCount = errors.New("homography requires exactly 4 source and 4 destination points")

// singularPivot is the pivot magnitude below which the linear system is
// treated as degenerate. The same bound guards the homogeneous divide.
const singularPivot = 1e-10

// Homography is a 3x3 projective transform mapping image-space homogeneous
// coordinates to rectified-plane coordinates. The zero value is Unset,
// meaning "no valid geometry yet"; every consumer must check Valid before
// applying it.
type Homography struct {
	m     [3][3]float64
	valid bool
}

// IdentityHomography returns the identity transform. It is used as the
// recovery value when a solve turns out to be numerically degenerate.
func IdentityHomography() Homography {
	return Homography{
		m: [3][3]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
		valid: true,
	}
}

// HomographyFromMatrix builds a valid Homography from raw coefficients.
// Used when restoring a persisted calibration profile.
func HomographyFromMatrix(m [3][3]float64) Homography {
	return Homography{m: m, valid: true}
}

// Valid reports whether the transform holds solved coefficients.
func (h Homography) Valid() bool {
	return h.valid
}

// Matrix returns the raw 3x3 coefficients.
func (h Homography) Matrix() [3][3]float64 {
	return h.m
}

// Apply transforms a point through the homography, dividing by the
// homogeneous w component. Returns the zero point if |w| is near zero or the
// transform is unset.
func (h Homography) Apply(p Point2D) Point2D {
	if !h.valid {
		return Point2D{}
	}

	x := h.m[0][0]*p.X + h.m[0][1]*p.Y + h.m[0][2]
	y := h.m[1][0]*p.X + h.m[1][1]*p.Y + h.m[1][2]
	w := h.m[2][0]*p.X + h.m[2][1]*p.Y + h.m[2][2]

	if math.Abs(w) < singularPivot {
		return Point2D{}
	}

	return Point2D{X: x / w, Y: y / w}
}

// MarshalJSON encodes the transform with an explicit validity flag so that
// "no geometry yet" survives the wire.
func (h Homography) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Valid  bool          `json:"valid"`
		Matrix [3][3]float64 `json:"matrix"`
	}{h.valid, h.m})
}

// UnmarshalJSON restores a transform encoded by MarshalJSON.
func (h *Homography) UnmarshalJSON(data []byte) error {
	var raw struct {
		Valid  bool          `json:"valid"`
		Matrix [3][3]float64 `json:"matrix"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	h.valid = raw.Valid
	h.m = raw.Matrix
	return nil
}

// ComputeHomography solves the 3x3 projective transform mapping the four
// source points onto the four destination points.
//
// Both point sets are normalized independently (translated to their centroid
// and scaled so the mean distance from it is sqrt 2) before building the 8x8
// Direct Linear Transform system, which keeps the elimination well
// conditioned for image-scale coordinates. If the system turns out singular
// the identity transform is returned instead of an error, since callers can
// always fall back to manual calibration.
func ComputeHomography(src, dst []Point2D) (Homography, error) {
	if len(src) != 4 || len(dst) != 4 {
		return Homography{}, ErrInvalidPointCount
	}

	normSrc, tSrc := normalizePoints(src)
	normDst, tDst := normalizePoints(dst)

	// Build the 8x8 DLT system A*h = b with h8 fixed to 1.
	var a [8][8]float64
	var b [8]float64
	for i := 0; i < 4; i++ {
		x, y := normSrc[i].X, normSrc[i].Y
		u, v := normDst[i].X, normDst[i].Y

		a[2*i] = [8]float64{x, y, 1, 0, 0, 0, -u * x, -u * y}
		b[2*i] = u
		a[2*i+1] = [8]float64{0, 0, 0, x, y, 1, -v * x, -v * y}
		b[2*i+1] = v
	}

	h, ok := solveLinearSystem(&a, &b)
	if !ok {
		return IdentityHomography(), nil
	}

	normH := [3][3]float64{
		{h[0], h[1], h[2]},
		{h[3], h[4], h[5]},
		{h[6], h[7], 1},
	}

	// Denormalize: H = inv(Tdst) * Hn * Tsrc
	m := mat3Mul(mat3Mul(invertSimilarity(tDst), normH), tSrc.asMatrix())

	// Normalize so the bottom-right coefficient is 1
	if math.Abs(m[2][2]) > singularPivot {
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				m[r][c] /= m[2][2]
			}
		}
		m[2][2] = 1
	}

	return Homography{m: m, valid: true}, nil
}

// similarity is a translate+scale conditioning transform p' = s*(p - c).
type similarity struct {
	scale float64
	cx    float64
	cy    float64
}

// normalizePoints translates the set to its centroid and scales it so the
// mean distance from the centroid is sqrt 2.
func normalizePoints(pts []Point2D) ([]Point2D, similarity) {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))

	var meanDist float64
	for _, p := range pts {
		meanDist += Distance(p, Point2D{X: cx, Y: cy})
	}
	meanDist /= float64(len(pts))

	scale := 1.0
	if meanDist > singularPivot {
		scale = math.Sqrt2 / meanDist
	}

	out := make([]Point2D, len(pts))
	for i, p := range pts {
		out[i] = Point2D{X: (p.X - cx) * scale, Y: (p.Y - cy) * scale}
	}
	return out, similarity{scale: scale, cx: cx, cy: cy}
}

// asMatrix returns the similarity as a 3x3 matrix.
func (t similarity) asMatrix() [3][3]float64 {
	return [3][3]float64{
		{t.scale, 0, -t.scale * t.cx},
		{0, t.scale, -t.scale * t.cy},
		{0, 0, 1},
	}
}

// invertSimilarity returns the inverse conditioning transform as a matrix.
func invertSimilarity(t similarity) [3][3]float64 {
	inv := 1.0 / t.scale
	return [3][3]float64{
		{inv, 0, t.cx},
		{0, inv, t.cy},
		{0, 0, 1},
	}
}

// mat3Mul multiplies two 3x3 matrices.
func mat3Mul(a, b [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			for k := 0; k < 3; k++ {
				out[r][c] += a[r][k] * b[k][c]
			}
		}
	}
	return out
}

// solveLinearSystem performs Gaussian elimination with partial pivoting on
// an 8x8 system. Returns ok=false when a pivot falls below the singular
// threshold.
func solveLinearSystem(a *[8][8]float64, b *[8]float64) ([8]float64, bool) {
	var x [8]float64

	for col := 0; col < 8; col++ {
		// Partial pivoting: pick the row with the largest magnitude in col
		pivot := col
		for row := col + 1; row < 8; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}

		if math.Abs(a[pivot][col]) < singularPivot {
			return x, false
		}

		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			b[pivot], b[col] = b[col], b[pivot]
		}

		for row := col + 1; row < 8; row++ {
			factor := a[row][col] / a[col][col]
			for c := col; c < 8; c++ {
				a[row][c] -= factor * a[col][c]
			}
			b[row] -= factor * b[col]
		}
	}

	// Back substitution
	for row := 7; row >= 0; row-- {
		sum := b[row]
		for c := row + 1; c < 8; c++ {
			sum -= a[row][c] * x[c]
		}
		x[row] = sum / a[row][row]
	}

	return x, true
}
