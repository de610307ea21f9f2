package mpm

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMat2Ops(t *testing.T) {
	a := Mat2{1, 2, 3, 4}
	b := Mat2{5, 6, 7, 8}

	ab := a.Mul(b)
	want := Mat2{19, 22, 43, 50}
	if ab != want {
		t.Errorf("Mul = %+v, want %+v", ab, want)
	}

	v := a.MulVec(Vec2{1, 1})
	if v.X != 3 || v.Y != 7 {
		t.Errorf("MulVec = %+v, want {3 7}", v)
	}

	if det := a.Det(); det != -2 {
		t.Errorf("Det = %v, want -2", det)
	}

	if tr := a.Transpose(); tr != (Mat2{1, 3, 2, 4}) {
		t.Errorf("Transpose = %+v", tr)
	}

	o := Outer(Vec2{2, 3}, Vec2{5, 7})
	if o != (Mat2{10, 14, 15, 21}) {
		t.Errorf("Outer = %+v", o)
	}
}

func TestSVD2Reconstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 1000; iter++ {
		m := Mat2{
			rng.Float32()*4 - 2, rng.Float32()*4 - 2,
			rng.Float32()*4 - 2, rng.Float32()*4 - 2,
		}
		u, s0, s1, v := SVD2(m)

		recon := u.Mul(Diag(s0, s1)).Mul(v.Transpose())
		checkClose(t, "M00", recon.M00, m.M00, 1e-5)
		checkClose(t, "M01", recon.M01, m.M01, 1e-5)
		checkClose(t, "M10", recon.M10, m.M10, 1e-5)
		checkClose(t, "M11", recon.M11, m.M11, 1e-5)

		// U and V must be rotations.
		for name, r := range map[string]Mat2{"U": u, "V": v} {
			id := r.Mul(r.Transpose())
			checkClose(t, name+" orthogonal 00", id.M00, 1, 1e-5)
			checkClose(t, name+" orthogonal 01", id.M01, 0, 1e-5)
			checkClose(t, name+" orthogonal 11", id.M11, 1, 1e-5)
			if r.Det() < 0.99 {
				t.Fatalf("%s det = %v, want 1", name, r.Det())
			}
		}

		if s0 < absf32(s1) {
			t.Fatalf("singular order: s0=%v s1=%v", s0, s1)
		}
	}
}

// TestSVD2AgainstGonum cross-checks the closed-form singular values against
// gonum's dense SVD.
func TestSVD2AgainstGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for iter := 0; iter < 200; iter++ {
		m := Mat2{
			rng.Float32()*2 - 1, rng.Float32()*2 - 1,
			rng.Float32()*2 - 1, rng.Float32()*2 - 1,
		}
		_, s0, s1, _ := SVD2(m)

		dense := mat.NewDense(2, 2, []float64{
			float64(m.M00), float64(m.M01),
			float64(m.M10), float64(m.M11),
		})
		var svd mat.SVD
		if !svd.Factorize(dense, mat.SVDNone) {
			t.Fatal("gonum SVD failed to factorize")
		}
		vals := svd.Values(nil)

		checkClose(t, "sigma0", s0, float32(vals[0]), 1e-4)
		checkClose(t, "sigma1", absf32(s1), float32(vals[1]), 1e-4)
	}
}

func TestSVD2Identity(t *testing.T) {
	u, s0, s1, v := SVD2(Identity())
	if u != Identity() || v != Identity() {
		t.Errorf("SVD of identity: U=%+v V=%+v", u, v)
	}
	if s0 != 1 || s1 != 1 {
		t.Errorf("singular values of identity: %v, %v", s0, s1)
	}
}

func TestClampf(t *testing.T) {
	if clampf(2, 0, 1) != 1 || clampf(-1, 0, 1) != 0 || clampf(0.5, 0, 1) != 0.5 {
		t.Error("clampf bounds wrong")
	}
}

func checkClose(t *testing.T, name string, got, want, tol float32) {
	t.Helper()
	if math.Abs(float64(got-want)) > float64(tol) {
		t.Fatalf("%s = %v, want %v (tol %v)", name, got, want, tol)
	}
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
