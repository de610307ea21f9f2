package mpm

// bsplineWeights returns the quadratic B-spline weights for the three nodes
// on one axis, given the fractional offset from the base node. The three
// weights sum to 1 for any offset.
func bsplineWeights(f float32) (w0, w1, w2 float32) {
	w0 = 0.5 * (1.5 - f) * (1.5 - f)
	w1 = 0.75 - (f-1)*(f-1)
	w2 = 0.5 * (f - 0.5) * (f - 0.5)
	return w0, w1, w2
}

// particleBase returns the base node of the 3x3 stencil and the fractional
// offset of the particle from it, in cell units. It must be recomputed from
// the current position every stage; P2G moves nothing but G2P advects.
func (s *Solver) particleBase(pos Vec2) (bi, bj int, fx Vec2) {
	gx := pos.X*s.invDx - 0.5
	gy := pos.Y*s.invDx - 0.5
	bi = int(floorf(gx))
	bj = int(floorf(gy))
	fx = Vec2{pos.X*s.invDx - float32(bi), pos.Y*s.invDx - float32(bj)}
	return bi, bj, fx
}

// p2gInto scatters particle i onto the given accumulation buffers. It also
// advances the deformation gradient and plastic state, which makes P2G the
// one stage that writes both particle and grid fields.
func (s *Solver) p2gInto(i int, vx, vy, m []float32) {
	p := s.pts
	bi, bj, fx := s.particleBase(p.Pos[i])
	wx0, wx1, wx2 := bsplineWeights(fx.X)
	wy0, wy1, wy2 := bsplineWeights(fx.Y)
	wx := [3]float32{wx0, wx1, wx2}
	wy := [3]float32{wy0, wy1, wy2}

	c := p.C[i]
	f := Identity().Add(c.Scale(s.prm.Dt)).Mul(p.F[i])
	f, jp, stress := s.cm.Update(f, p.Mat[i], p.Jp[i])
	p.F[i] = f
	p.Jp[i] = jp

	stress = stress.Scale(-s.prm.Dt * s.prm.ParticleVolume * 4 * s.invDx * s.invDx)
	affine := stress.Add(c.Scale(s.prm.ParticleMass))

	mv := p.Vel[i].Scale(s.prm.ParticleMass)
	n := s.grid.N
	for di := 0; di < 3; di++ {
		ii := bi + di
		if ii < 0 || ii >= n {
			continue
		}
		for dj := 0; dj < 3; dj++ {
			jj := bj + dj
			if jj < 0 || jj >= n {
				continue
			}
			dpos := Vec2{(float32(di) - fx.X) * s.dx, (float32(dj) - fx.Y) * s.dx}
			wt := wx[di] * wy[dj]
			contrib := mv.Add(affine.MulVec(dpos))
			idx := ii*n + jj
			vx[idx] += wt * contrib.X
			vy[idx] += wt * contrib.Y
			m[idx] += wt * s.prm.ParticleMass
		}
	}
}

// P2G scatters mass, momentum and stress contributions from every particle
// onto the grid. Multiple particles write the same nodes, so the parallel
// path accumulates into per-worker buffers and reduces them over nodes;
// the reduction order is fixed by worker index, which keeps the result
// deterministic for a given worker count.
func (s *Solver) P2G() {
	n := s.pts.Len()
	if s.backend.Workers() == 1 || n < s.threshold {
		for i := 0; i < n; i++ {
			s.p2gInto(i, s.grid.Vx, s.grid.Vy, s.grid.M)
		}
		return
	}

	for w := range s.scratch {
		s.scratch[w].clear()
	}
	s.backend.Run(n, func(worker, start, end int) {
		sc := &s.scratch[worker]
		for i := start; i < end; i++ {
			s.p2gInto(i, sc.vx, sc.vy, sc.m)
		}
	})
	s.backend.Run(s.grid.Cells(), func(_, start, end int) {
		for w := range s.scratch {
			sc := &s.scratch[w]
			for idx := start; idx < end; idx++ {
				s.grid.Vx[idx] += sc.vx[idx]
				s.grid.Vy[idx] += sc.vy[idx]
				s.grid.M[idx] += sc.m[idx]
			}
		}
	})
}

// UpdateGrid converts momentum to velocity, applies gravity, and enforces
// the no-penetration walls: any node within three cells of a domain edge
// loses the velocity component pointing out through that edge. Zero-mass
// nodes stay at rest.
func (s *Solver) UpdateGrid() {
	g := s.grid
	n := g.N
	dtg := s.prm.Dt * s.prm.Gravity
	s.backend.Run(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < n; j++ {
				idx := i*n + j
				if g.M[idx] > 0 {
					inv := 1 / g.M[idx]
					g.Vx[idx] *= inv
					g.Vy[idx] = g.Vy[idx]*inv - dtg
				}
				if i < 3 && g.Vx[idx] < 0 {
					g.Vx[idx] = 0
				}
				if i > n-3 && g.Vx[idx] > 0 {
					g.Vx[idx] = 0
				}
				if j < 3 && g.Vy[idx] < 0 {
					g.Vy[idx] = 0
				}
				if j > n-3 && g.Vy[idx] > 0 {
					g.Vy[idx] = 0
				}
			}
		}
	})
}

// g2pParticle gathers grid velocity into particle i, rebuilds the affine
// velocity gradient, and advects the position.
func (s *Solver) g2pParticle(i int) {
	p := s.pts
	bi, bj, fx := s.particleBase(p.Pos[i])
	wx0, wx1, wx2 := bsplineWeights(fx.X)
	wy0, wy1, wy2 := bsplineWeights(fx.Y)
	wx := [3]float32{wx0, wx1, wx2}
	wy := [3]float32{wy0, wy1, wy2}

	var vel Vec2
	var c Mat2
	n := s.grid.N
	for di := 0; di < 3; di++ {
		ii := bi + di
		if ii < 0 || ii >= n {
			continue
		}
		for dj := 0; dj < 3; dj++ {
			jj := bj + dj
			if jj < 0 || jj >= n {
				continue
			}
			idx := ii*n + jj
			gv := Vec2{s.grid.Vx[idx], s.grid.Vy[idx]}
			dpos := Vec2{float32(di) - fx.X, float32(dj) - fx.Y}
			wt := wx[di] * wy[dj]
			vel = vel.Add(gv.Scale(wt))
			c = c.Add(Outer(gv, dpos).Scale(4 * s.invDx * wt))
		}
	}
	p.Vel[i] = vel
	p.C[i] = c
	p.Pos[i] = p.Pos[i].Add(vel.Scale(s.prm.Dt))
}

// G2P gathers the updated grid velocities back to the particles. Each
// particle writes only its own state, so there is no write hazard here.
func (s *Solver) G2P() {
	n := s.pts.Len()
	if s.backend.Workers() == 1 || n < s.threshold {
		for i := 0; i < n; i++ {
			s.g2pParticle(i)
		}
		return
	}
	s.backend.Run(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			s.g2pParticle(i)
		}
	})
}
