// mpmbench runs the solver headless and reports substep throughput for the
// serial and worker-pool backends.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pthm-cable/slurry/config"
	"github.com/pthm-cable/slurry/mpm"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	particles := flag.Int("particles", 0, "Particle count override (0 = use config emitters)")
	substeps := flag.Int("substeps", 2000, "Substeps to run per backend")
	workers := flag.Int("workers", 0, "Pool worker count (0 = GOMAXPROCS)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	serial := buildSolver(cfg, *particles, mpm.Serial{})
	pool := buildSolver(cfg, *particles, mpm.NewPool(*workers))
	defer pool.Close()

	fmt.Printf("particles=%d grid=%d substeps=%d\n",
		serial.Particles().Len(), cfg.Grid.Resolution, *substeps)

	serialRate := run(serial, *substeps)
	fmt.Printf("serial: %.0f substeps/s\n", serialRate)

	poolRate := run(pool, *substeps)
	fmt.Printf("pool:   %.0f substeps/s (%.2fx)\n", poolRate, poolRate/serialRate)
}

// buildSolver assembles particles from the config emitters on a lattice so
// both backends see the identical scene.
func buildSolver(cfg *config.Config, override int, backend mpm.Backend) *mpm.Solver {
	total := cfg.Derived.TotalParticles
	if override > 0 {
		total = override
	}
	pts := mpm.NewParticles(total)

	if override > 0 {
		pts.ScatterLattice(0, total, mpm.MaterialFluid, mpm.Region{X: 0.2, Y: 0.2, W: 0.6, H: 0.6})
	} else {
		offset := 0
		for _, em := range cfg.Emitters {
			mat, err := mpm.ParseMaterial(em.Material)
			if err != nil {
				fmt.Fprintf(os.Stderr, "bad emitter: %v\n", err)
				os.Exit(1)
			}
			pts.ScatterLattice(offset, em.Count, mat, mpm.Region{
				X: float32(em.Region.X), Y: float32(em.Region.Y),
				W: float32(em.Region.W), H: float32(em.Region.H),
			})
			offset += em.Count
		}
	}

	prm := mpm.Params{
		GridRes:        cfg.Grid.Resolution,
		Dt:             cfg.Derived.Dt32,
		Gravity:        cfg.Derived.Gravity32,
		ParticleVolume: cfg.Derived.ParticleVolume,
		ParticleMass:   cfg.Derived.ParticleMass,
	}
	cm := mpm.DefaultConstitutiveModel(float32(cfg.Physics.YoungsModulus), float32(cfg.Physics.PoissonRatio))
	return mpm.NewSolver(pts, prm, cm, backend)
}

func run(s *mpm.Solver, substeps int) float64 {
	start := time.Now()
	for i := 0; i < substeps; i++ {
		s.Substep()
	}
	elapsed := time.Since(start)
	return float64(substeps) / elapsed.Seconds()
}
