package mpm

import "testing"

func TestParseMaterial(t *testing.T) {
	for _, name := range []string{"fluid", "jelly", "snow"} {
		m, err := ParseMaterial(name)
		if err != nil {
			t.Fatalf("ParseMaterial(%q): %v", name, err)
		}
		if m.String() != name {
			t.Errorf("round trip %q -> %q", name, m.String())
		}
	}
	if _, err := ParseMaterial("lava"); err == nil {
		t.Error("expected error for unknown material")
	}
}

// Fluid has no shear resistance: any deformation gradient collapses onto
// sqrt(J)*I and the stress has no deviatoric part.
func TestFluidIsotropy(t *testing.T) {
	cm := DefaultConstitutiveModel(1000, 0.2)

	f := Mat2{1.1, 0.3, -0.2, 0.9}
	j := f.Det()
	nf, jp, stress := cm.Update(f, MaterialFluid, 1)

	if jp != 1 {
		t.Errorf("fluid jp = %v, want 1", jp)
	}
	if nf.M01 != 0 || nf.M10 != 0 {
		t.Errorf("fluid F not diagonal: %+v", nf)
	}
	if nf.M00 != nf.M11 {
		t.Errorf("fluid F not isotropic: %+v", nf)
	}
	checkClose(t, "fluid J preserved", nf.Det(), j, 1e-5)

	checkClose(t, "stress off-diagonal 01", stress.M01, 0, 1e-4)
	checkClose(t, "stress off-diagonal 10", stress.M10, 0, 1e-4)
	checkClose(t, "stress pressure isotropy", stress.M00, stress.M11, 1e-4)
}

func TestSnowSingularClamp(t *testing.T) {
	cm := DefaultConstitutiveModel(1000, 0.2)

	// Heavily stretched and compressed gradients must come back inside
	// the yield bounds.
	for _, f := range []Mat2{
		{1.3, 0, 0, 1.3},
		{0.7, 0, 0, 0.7},
		{1.2, 0.4, -0.3, 0.8},
	} {
		nf, _, _ := cm.Update(f, MaterialSnow, 1)
		_, s0, s1, _ := SVD2(nf)
		for _, s := range []float32{s0, s1} {
			if s < cm.SnowClampLo-1e-5 || s > cm.SnowClampHi+1e-5 {
				t.Errorf("snow singular value %v outside [%v, %v] for F=%+v",
					s, cm.SnowClampLo, cm.SnowClampHi, f)
			}
		}
	}
}

// The plastic ratio absorbs the volume change removed by the clamp, so the
// product Jp * det(F) tracks the pre-clamp volume.
func TestSnowPlasticAccumulation(t *testing.T) {
	cm := DefaultConstitutiveModel(1000, 0.2)

	f := Mat2{1.2, 0, 0, 1.2}
	nf, jp, _ := cm.Update(f, MaterialSnow, 1)

	if jp <= 1 {
		t.Errorf("compaction-free stretch should grow jp, got %v", jp)
	}
	checkClose(t, "volume bookkeeping", jp*nf.Det(), f.Det(), 1e-4)
}

func TestHardening(t *testing.T) {
	cm := DefaultConstitutiveModel(1000, 0.2)

	// Jelly ignores Jp and uses the fixed softening factor.
	mu, la := cm.lame(MaterialJelly, 0.2)
	checkClose(t, "jelly mu", mu, cm.Mu0*cm.JellyH, 1e-4)
	checkClose(t, "jelly lambda", la, cm.Lambda0*cm.JellyH, 1e-4)

	// Snow hardens under compaction (jp < 1) up to the cap.
	mu, _ = cm.lame(MaterialSnow, 0.5)
	checkClose(t, "snow hardening capped", mu, cm.Mu0*cm.HardeningMax, 1e-3)

	// And softens under extension down to the floor.
	mu, _ = cm.lame(MaterialSnow, 2)
	checkClose(t, "snow softening floored", mu, cm.Mu0*cm.HardeningMin, 1e-3)

	// Neutral plastic state leaves the baseline untouched.
	mu, la = cm.lame(MaterialSnow, 1)
	checkClose(t, "neutral mu", mu, cm.Mu0, 1e-3)
	checkClose(t, "neutral lambda", la, cm.Lambda0, 1e-3)

	// Fluid always drops shear.
	mu, la = cm.lame(MaterialFluid, 1)
	if mu != 0 {
		t.Errorf("fluid mu = %v, want 0", mu)
	}
	if la == 0 {
		t.Error("fluid lambda should keep volumetric stiffness")
	}
}

func TestRestStateStressFree(t *testing.T) {
	cm := DefaultConstitutiveModel(1000, 0.2)
	for m := MaterialFluid; m < NumMaterials; m++ {
		nf, jp, stress := cm.Update(Identity(), m, 1)
		if nf != Identity() {
			t.Errorf("%v: rest F changed: %+v", m, nf)
		}
		if jp != 1 {
			t.Errorf("%v: rest jp = %v", m, jp)
		}
		if stress != (Mat2{}) {
			t.Errorf("%v: rest stress nonzero: %+v", m, stress)
		}
	}
}
