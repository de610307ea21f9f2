package mpm

import "fmt"

// Material identifies the constitutive behavior of a particle.
type Material uint8

const (
	MaterialFluid Material = iota
	MaterialJelly
	MaterialSnow
	NumMaterials
)

func (m Material) String() string {
	switch m {
	case MaterialFluid:
		return "fluid"
	case MaterialJelly:
		return "jelly"
	case MaterialSnow:
		return "snow"
	}
	return fmt.Sprintf("material(%d)", uint8(m))
}

// ParseMaterial maps a config name to a Material.
func ParseMaterial(name string) (Material, error) {
	switch name {
	case "fluid":
		return MaterialFluid, nil
	case "jelly":
		return MaterialJelly, nil
	case "snow":
		return MaterialSnow, nil
	}
	return 0, fmt.Errorf("unknown material %q", name)
}

// ConstitutiveModel evaluates per-material stress and plastic state.
// Mu0 and Lambda0 are the Lame parameters of the shared elastic baseline;
// the remaining fields parameterize hardening and snow plasticity.
type ConstitutiveModel struct {
	Mu0, Lambda0 float32

	// Hardening h = clamp(exp(K*(1-Jp)), Min, Max); jelly uses the fixed value.
	HardeningK   float32
	HardeningMin float32
	HardeningMax float32
	JellyH       float32

	// Snow singular value clamp bounds (plastic yield).
	SnowClampLo float32
	SnowClampHi float32
}

// DefaultConstitutiveModel returns the model with the standard elasticity
// relations applied to Young's modulus e and Poisson ratio nu.
func DefaultConstitutiveModel(e, nu float32) ConstitutiveModel {
	return ConstitutiveModel{
		Mu0:          e / (2 * (1 + nu)),
		Lambda0:      e * nu / ((1 + nu) * (1 - 2*nu)),
		HardeningK:   10,
		HardeningMin: 0.1,
		HardeningMax: 5,
		JellyH:       0.3,
		SnowClampLo:  1 - 2.5e-2,
		SnowClampHi:  1 + 4.5e-3,
	}
}

// lame returns the hardened Lame parameters for a material. The hardening
// coefficient is evaluated from the plastic ratio as carried into the
// substep, before the singular value clamp folds new plastic strain into it.
func (c *ConstitutiveModel) lame(m Material, jp float32) (mu, la float32) {
	h := clampf(expf(c.HardeningK*(1-jp)), c.HardeningMin, c.HardeningMax)
	if m == MaterialJelly {
		h = c.JellyH
	}
	mu, la = c.Mu0*h, c.Lambda0*h
	if m == MaterialFluid {
		mu = 0 // no shear resistance
	}
	return mu, la
}

// clampSingular applies the plastic yield bound to one singular value.
func (c *ConstitutiveModel) clampSingular(m Material, s float32) float32 {
	if m == MaterialSnow {
		return clampf(s, c.SnowClampLo, c.SnowClampHi)
	}
	return s
}

// reconstruct rebuilds the deformation gradient after the singular value
// update. Fluid discards shape memory, snow sheds the plastic strain already
// folded into Jp, jelly stays purely elastic.
func (c *ConstitutiveModel) reconstruct(m Material, f, u, v Mat2, s0, s1, j float32) Mat2 {
	switch m {
	case MaterialFluid:
		return Identity().Scale(sqrtf(j))
	case MaterialSnow:
		return u.Mul(Diag(s0, s1)).Mul(v.Transpose())
	}
	return f
}

// Update advances the constitutive state of one particle. It takes the
// deformation gradient (already advanced by (I + dt*C)), the material tag and
// the plastic ratio, and returns the reconstructed gradient, the new plastic
// ratio and the unscaled fixed-corotated stress
//
//	2*mu*(F - U*V^T)*F^T + lambda*J*(J-1)*I
//
// The caller scales the stress by -dt*vol*4/dx^2 to turn it into a grid
// force contribution.
func (c *ConstitutiveModel) Update(f Mat2, m Material, jp float32) (Mat2, float32, Mat2) {
	mu, la := c.lame(m, jp)

	u, s0, s1, v := SVD2(f)

	j := float32(1)
	ns0 := c.clampSingular(m, s0)
	jp *= s0 / ns0
	j *= ns0
	ns1 := c.clampSingular(m, s1)
	jp *= s1 / ns1
	j *= ns1

	f = c.reconstruct(m, f, u, v, ns0, ns1, j)

	r := u.Mul(v.Transpose())
	stress := f.Sub(r).Scale(2 * mu).Mul(f.Transpose()).
		Add(Identity().Scale(la * j * (j - 1)))
	return f, jp, stress
}
