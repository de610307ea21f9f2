// Package mpm implements a 2D multi-material MLS-MPM solver with APIC
// particle-grid transfer. Particles carrying material state (deformation
// gradient, affine velocity, plastic ratio) exchange mass and momentum with
// a regular background grid once per substep: P2G scatter with constitutive
// stress, grid momentum-to-velocity update with gravity and wall boundaries,
// then G2P gather and advection. Stages run under a swappable data-parallel
// backend with strict barriers between them.
package mpm

import (
	"fmt"
	"time"
)

// Params holds the fixed solver configuration. No field is mutated by the
// solver during a run.
type Params struct {
	GridRes           int     // nodes per grid side
	Dt                float32 // substep size in seconds
	Gravity           float32 // gravity magnitude, pulls -y
	ParticleVolume    float32 // reference volume per particle
	ParticleMass      float32 // mass per particle
	ParallelThreshold int     // below this particle count stages run inline
}

// defaultThreshold mirrors the small-population fallback the parallel
// dispatch uses: goroutine overhead beats the win below this size.
const defaultThreshold = 256

// gridScratch is a per-worker accumulation buffer for the P2G scatter.
type gridScratch struct {
	vx, vy, m []float32
}

func newGridScratch(cells int) gridScratch {
	return gridScratch{
		vx: make([]float32, cells),
		vy: make([]float32, cells),
		m:  make([]float32, cells),
	}
}

func (sc *gridScratch) clear() {
	clear(sc.vx)
	clear(sc.vy)
	clear(sc.m)
}

// Solver owns the particle and grid buffers and runs the substep pipeline.
// The grid is private to the solver for the duration of a substep; outside
// callers only observe state between substeps.
type Solver struct {
	prm Params
	cm  ConstitutiveModel

	pts  *Particles
	grid *Grid

	backend   Backend
	scratch   []gridScratch
	threshold int

	dx, invDx float32
	substeps  int64
}

// NewSolver builds a solver over the given particles. The backend controls
// how stage loops execute; pass Serial{} for deterministic runs.
func NewSolver(pts *Particles, prm Params, cm ConstitutiveModel, backend Backend) *Solver {
	if prm.GridRes <= 0 {
		prm.GridRes = 128
	}
	dx := 1 / float32(prm.GridRes)
	if prm.ParticleVolume == 0 {
		prm.ParticleVolume = (dx * 0.5) * (dx * 0.5)
	}
	if prm.ParticleMass == 0 {
		prm.ParticleMass = prm.ParticleVolume // unit density
	}
	threshold := prm.ParallelThreshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	s := &Solver{
		prm:       prm,
		cm:        cm,
		pts:       pts,
		grid:      NewGrid(prm.GridRes),
		backend:   backend,
		threshold: threshold,
		dx:        dx,
		invDx:     float32(prm.GridRes),
	}
	if backend.Workers() > 1 {
		s.scratch = make([]gridScratch, backend.Workers())
		for w := range s.scratch {
			s.scratch[w] = newGridScratch(s.grid.Cells())
		}
	}
	return s
}

// Particles exposes the particle buffers. Callers must not touch them while
// a substep is running.
func (s *Solver) Particles() *Particles { return s.pts }

// Grid exposes the grid buffers, valid between substeps only.
func (s *Solver) Grid() *Grid { return s.grid }

// Params returns the solver configuration.
func (s *Solver) Params() Params { return s.prm }

// Substeps returns the number of substeps run so far.
func (s *Solver) Substeps() int64 { return s.substeps }

// Substep runs one full pipeline pass: clear, P2G, grid update, G2P. Each
// stage completes for all items before the next starts.
func (s *Solver) Substep() {
	s.grid.Clear()
	s.P2G()
	s.UpdateGrid()
	s.G2P()
	s.substeps++
}

// SubstepTimed runs one substep and reports per-stage wall time through
// record. The viewer uses this for its perf HUD; the overhead is four
// clock reads.
func (s *Solver) SubstepTimed(record func(stage string, d time.Duration)) {
	t := time.Now()
	s.grid.Clear()
	record("clear", time.Since(t))

	t = time.Now()
	s.P2G()
	record("p2g", time.Since(t))

	t = time.Now()
	s.UpdateGrid()
	record("grid", time.Since(t))

	t = time.Now()
	s.G2P()
	record("g2p", time.Since(t))
	s.substeps++
}

// Close releases the backend workers.
func (s *Solver) Close() {
	s.backend.Close()
}

// DivergenceError reports a particle whose state went non-physical. The
// pipeline must not silently march NaN or a collapsed deformation gradient
// into the next substep.
type DivergenceError struct {
	Particle int
	Material Material
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("numerical divergence at particle %d (%s)", e.Particle, e.Material)
}

// CheckInvariants scans all particles for non-finite state or a degenerate
// deformation gradient (determinant <= 0) and returns a DivergenceError for
// the first offender. Intended as a periodic hook, not a per-substep cost.
func (s *Solver) CheckInvariants() error {
	p := s.pts
	for i := 0; i < p.Len(); i++ {
		ok := isFinite(p.Pos[i].X) && isFinite(p.Pos[i].Y) &&
			isFinite(p.Vel[i].X) && isFinite(p.Vel[i].Y) &&
			p.F[i].IsFinite() &&
			isFinite(p.Jp[i]) && p.Jp[i] > 0 &&
			p.F[i].Det() > 0
		if !ok {
			return &DivergenceError{Particle: i, Material: p.Mat[i]}
		}
	}
	return nil
}
