package mpm

import (
	"math/rand"
)

// Particles holds all particle state in structure-of-arrays layout. The
// count is fixed at construction; particles are never created or destroyed
// during a run.
type Particles struct {
	Pos []Vec2     // position in [0,1]^2
	Vel []Vec2     // velocity
	C   []Mat2     // affine velocity gradient (APIC)
	F   []Mat2     // deformation gradient
	Jp  []float32  // accumulated plastic volume ratio
	Mat []Material // constitutive tag, fixed per particle
}

// NewParticles allocates state for n particles with identity deformation,
// unit plastic ratio and zero velocity. Positions are left at the origin
// until a placement pass fills them in.
func NewParticles(n int) *Particles {
	p := &Particles{
		Pos: make([]Vec2, n),
		Vel: make([]Vec2, n),
		C:   make([]Mat2, n),
		F:   make([]Mat2, n),
		Jp:  make([]float32, n),
		Mat: make([]Material, n),
	}
	for i := 0; i < n; i++ {
		p.F[i] = Identity()
		p.Jp[i] = 1
	}
	return p
}

// Len returns the particle count.
func (p *Particles) Len() int { return len(p.Pos) }

// ResetState restores particle i to its initial dynamic state without moving it.
func (p *Particles) ResetState(i int) {
	p.Vel[i] = Vec2{}
	p.C[i] = Mat2{}
	p.F[i] = Identity()
	p.Jp[i] = 1
}

// Region is an axis-aligned spawn rectangle in simulation space.
type Region struct {
	X, Y, W, H float32
}

// ScatterRandom places particles [start, start+count) uniformly inside the
// region using the given generator. The seed behind rng is an explicit
// caller choice; there is no implicit time-based seeding here.
func (p *Particles) ScatterRandom(start, count int, m Material, r Region, rng *rand.Rand) {
	for i := start; i < start+count; i++ {
		p.Pos[i] = Vec2{
			X: r.X + rng.Float32()*r.W,
			Y: r.Y + rng.Float32()*r.H,
		}
		p.Mat[i] = m
		p.ResetState(i)
	}
}

// ScatterLattice places particles [start, start+count) on a regular lattice
// inside the region. Fully deterministic; used for reproducible runs and
// tests.
func (p *Particles) ScatterLattice(start, count int, m Material, r Region) {
	side := 1
	for side*side < count {
		side++
	}
	for k := 0; k < count; k++ {
		col := k % side
		row := k / side
		p.Pos[start+k] = Vec2{
			X: r.X + (float32(col)+0.5)/float32(side)*r.W,
			Y: r.Y + (float32(row)+0.5)/float32(side)*r.H,
		}
		p.Mat[start+k] = m
		p.ResetState(start + k)
	}
}

// KineticEnergy returns 0.5*mass*sum(|v|^2), accumulated in float64.
func (p *Particles) KineticEnergy(mass float32) float64 {
	var sum float64
	for i := range p.Vel {
		sum += float64(p.Vel[i].LenSq())
	}
	return 0.5 * float64(mass) * sum
}

// MaxSpeedSq returns the largest squared particle speed.
func (p *Particles) MaxSpeedSq() float32 {
	var best float32
	for i := range p.Vel {
		if s := p.Vel[i].LenSq(); s > best {
			best = s
		}
	}
	return best
}
