package mpm

import (
	"math/rand"
	"testing"
)

func TestScatterRandomContainment(t *testing.T) {
	p := NewParticles(500)
	r := Region{X: 0.3, Y: 0.1, W: 0.2, H: 0.4}
	p.ScatterRandom(0, 500, MaterialFluid, r, rand.New(rand.NewSource(42)))

	for i := 0; i < p.Len(); i++ {
		pos := p.Pos[i]
		if pos.X < r.X || pos.X > r.X+r.W || pos.Y < r.Y || pos.Y > r.Y+r.H {
			t.Fatalf("particle %d at %+v outside region %+v", i, pos, r)
		}
		if p.Mat[i] != MaterialFluid {
			t.Fatalf("particle %d material %v", i, p.Mat[i])
		}
		if p.F[i] != Identity() || p.Jp[i] != 1 {
			t.Fatalf("particle %d not at rest state", i)
		}
	}
}

func TestScatterRandomSeeded(t *testing.T) {
	r := Region{X: 0, Y: 0, W: 1, H: 1}

	a := NewParticles(100)
	a.ScatterRandom(0, 100, MaterialSnow, r, rand.New(rand.NewSource(7)))
	b := NewParticles(100)
	b.ScatterRandom(0, 100, MaterialSnow, r, rand.New(rand.NewSource(7)))

	for i := 0; i < 100; i++ {
		if a.Pos[i] != b.Pos[i] {
			t.Fatalf("same seed diverged at particle %d: %+v vs %+v", i, a.Pos[i], b.Pos[i])
		}
	}
}

func TestScatterLattice(t *testing.T) {
	p := NewParticles(100)
	r := Region{X: 0.2, Y: 0.2, W: 0.1, H: 0.1}
	p.ScatterLattice(0, 100, MaterialJelly, r)

	q := NewParticles(100)
	q.ScatterLattice(0, 100, MaterialJelly, r)

	for i := 0; i < 100; i++ {
		if p.Pos[i] != q.Pos[i] {
			t.Fatalf("lattice placement not deterministic at %d", i)
		}
		pos := p.Pos[i]
		if pos.X <= r.X || pos.X >= r.X+r.W || pos.Y <= r.Y || pos.Y >= r.Y+r.H {
			t.Fatalf("lattice particle %d at %+v outside open region %+v", i, pos, r)
		}
	}

	// No two particles share a site.
	seen := make(map[Vec2]bool, 100)
	for i := 0; i < 100; i++ {
		if seen[p.Pos[i]] {
			t.Fatalf("duplicate lattice site %+v", p.Pos[i])
		}
		seen[p.Pos[i]] = true
	}
}

func TestKineticEnergy(t *testing.T) {
	p := NewParticles(2)
	p.Vel[0] = Vec2{3, 4}
	p.Vel[1] = Vec2{0, 2}

	if ke := p.KineticEnergy(2); ke != 29 {
		t.Errorf("KineticEnergy = %v, want 29", ke)
	}
	if ms := p.MaxSpeedSq(); ms != 25 {
		t.Errorf("MaxSpeedSq = %v, want 25", ms)
	}
}
