package mpm

import "math"

// Vec2 is a 2D vector in float32, the precision used throughout the solver.
type Vec2 struct {
	X, Y float32
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// LenSq returns the squared length.
func (v Vec2) LenSq() float32 { return v.X*v.X + v.Y*v.Y }

// Mat2 is a 2x2 matrix in row-major order:
//
//	| M00 M01 |
//	| M10 M11 |
type Mat2 struct {
	M00, M01, M10, M11 float32
}

// Identity returns the 2x2 identity matrix.
func Identity() Mat2 { return Mat2{1, 0, 0, 1} }

// Diag returns a diagonal matrix with entries a and b.
func Diag(a, b float32) Mat2 { return Mat2{a, 0, 0, b} }

// Outer returns the outer product a*b^T.
func Outer(a, b Vec2) Mat2 {
	return Mat2{a.X * b.X, a.X * b.Y, a.Y * b.X, a.Y * b.Y}
}

func (m Mat2) Add(o Mat2) Mat2 {
	return Mat2{m.M00 + o.M00, m.M01 + o.M01, m.M10 + o.M10, m.M11 + o.M11}
}

func (m Mat2) Sub(o Mat2) Mat2 {
	return Mat2{m.M00 - o.M00, m.M01 - o.M01, m.M10 - o.M10, m.M11 - o.M11}
}

func (m Mat2) Scale(s float32) Mat2 {
	return Mat2{m.M00 * s, m.M01 * s, m.M10 * s, m.M11 * s}
}

func (m Mat2) Mul(o Mat2) Mat2 {
	return Mat2{
		m.M00*o.M00 + m.M01*o.M10, m.M00*o.M01 + m.M01*o.M11,
		m.M10*o.M00 + m.M11*o.M10, m.M10*o.M01 + m.M11*o.M11,
	}
}

func (m Mat2) MulVec(v Vec2) Vec2 {
	return Vec2{m.M00*v.X + m.M01*v.Y, m.M10*v.X + m.M11*v.Y}
}

func (m Mat2) Transpose() Mat2 { return Mat2{m.M00, m.M10, m.M01, m.M11} }

func (m Mat2) Det() float32 { return m.M00*m.M11 - m.M01*m.M10 }

// IsFinite reports whether all entries are finite numbers.
func (m Mat2) IsFinite() bool {
	return isFinite(m.M00) && isFinite(m.M01) && isFinite(m.M10) && isFinite(m.M11)
}

// SVD2 computes the singular value decomposition m = U * diag(s0, s1) * V^T
// in closed form. s0 >= |s1|; s1 may be negative when m has a reflection,
// which keeps the reconstruction exact. For deformation gradients with
// positive determinant both singular values come out positive.
func SVD2(m Mat2) (u Mat2, s0, s1 float32, v Mat2) {
	e := (m.M00 + m.M11) * 0.5
	f := (m.M00 - m.M11) * 0.5
	g := (m.M10 + m.M01) * 0.5
	h := (m.M10 - m.M01) * 0.5

	q := hypotf(e, h)
	r := hypotf(f, g)
	s0 = q + r
	s1 = q - r

	a1 := atan2f(g, f)
	a2 := atan2f(h, e)
	theta := (a2 - a1) * 0.5
	phi := (a2 + a1) * 0.5

	u = rot2(phi)
	// m = rot(phi) * diag * rot(theta), so V is the transpose of rot(theta).
	v = rot2(theta).Transpose()
	return u, s0, s1, v
}

// rot2 returns the counterclockwise rotation matrix for angle t.
func rot2(t float32) Mat2 {
	s, c := math.Sincos(float64(t))
	return Mat2{float32(c), -float32(s), float32(s), float32(c)}
}

// Clamp helpers in float32 for hot-path use.

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

func sqrtf(v float32) float32 { return float32(math.Sqrt(float64(v))) }

func expf(v float32) float32 { return float32(math.Exp(float64(v))) }

func floorf(v float32) float32 { return float32(math.Floor(float64(v))) }

func hypotf(a, b float32) float32 {
	return float32(math.Hypot(float64(a), float64(b)))
}

func atan2f(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}
