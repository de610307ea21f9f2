// Package game wires the MPM solver to the raylib viewer: input, rendering,
// telemetry and the per-frame substep loop.
package game

import (
	"log/slog"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slurry/camera"
	"github.com/pthm-cable/slurry/config"
	"github.com/pthm-cable/slurry/mpm"
	"github.com/pthm-cable/slurry/telemetry"
	"github.com/pthm-cable/slurry/ui"
)

// Options configures a Game instance from CLI flags.
type Options struct {
	Seed          int64  // RNG seed for random placement
	Headless      bool   // no raylib window; Draw must not be called
	Deterministic bool   // force lattice placement regardless of config
	OutputDir     string // CSV output directory, empty = disabled
	Workers       int    // backend worker override, 0 = use config
}

// Game holds the complete simulation and viewer state.
type Game struct {
	solver  *mpm.Solver
	backend mpm.Backend
	opts    Options

	frame            int32
	paused           bool
	diverged         bool
	speed            int // simulated frames per update, 1..maxSpeed
	substepsPerFrame int

	debugMode bool

	perf        *PerfStats
	stageMicros map[string]float64
	collector   *telemetry.Collector
	output      *telemetry.OutputManager

	camera         *camera.Camera
	panel          *ui.Panel
	colors         [mpm.NumMaterials]rl.Color
	particleRadius float32

	screenWidth, screenHeight float32
	worldScale                float32 // pixels per simulation unit
}

const maxSpeed = 10

// NewGame creates a game instance. Config must be initialized first.
func NewGame(opts Options) (*Game, error) {
	cfg := config.Cfg()

	workers := cfg.Solver.Workers
	if opts.Workers != 0 {
		workers = opts.Workers
	}
	var backend mpm.Backend
	if workers == 1 {
		backend = mpm.Serial{}
	} else {
		backend = mpm.NewPool(workers)
	}

	g := &Game{
		backend:          backend,
		opts:             opts,
		speed:            1,
		substepsPerFrame: cfg.Derived.SubstepsPerFrame,
		perf:             NewPerfStats(),
		stageMicros:      make(map[string]float64),
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		particleRadius:   1.5,
		screenWidth:      float32(cfg.Screen.Width),
		screenHeight:     float32(cfg.Screen.Height),
	}

	if err := g.buildSolver(); err != nil {
		backend.Close()
		return nil, err
	}

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		backend.Close()
		return nil, err
	}
	g.output = out
	if err := g.output.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	if !opts.Headless {
		g.worldScale = g.screenWidth
		if g.screenHeight < g.screenWidth {
			g.worldScale = g.screenHeight
		}
		g.camera = camera.New(g.screenWidth, g.screenHeight, g.worldScale, g.worldScale)
		g.panel = ui.NewPanel()
		g.initColors(cfg)
	}

	return g, nil
}

// buildSolver constructs particles from the emitter config and a fresh
// solver over them. Called at startup and on reset.
func (g *Game) buildSolver() error {
	cfg := config.Cfg()

	pts := mpm.NewParticles(cfg.Derived.TotalParticles)
	lattice := g.opts.Deterministic || cfg.Placement.Mode == "lattice"
	rng := rand.New(rand.NewSource(g.opts.Seed))

	offset := 0
	for _, em := range cfg.Emitters {
		mat, err := mpm.ParseMaterial(em.Material)
		if err != nil {
			return err
		}
		region := mpm.Region{
			X: float32(em.Region.X), Y: float32(em.Region.Y),
			W: float32(em.Region.W), H: float32(em.Region.H),
		}
		if lattice {
			pts.ScatterLattice(offset, em.Count, mat, region)
		} else {
			pts.ScatterRandom(offset, em.Count, mat, region, rng)
		}
		offset += em.Count
	}

	prm := mpm.Params{
		GridRes:           cfg.Grid.Resolution,
		Dt:                cfg.Derived.Dt32,
		Gravity:           cfg.Derived.Gravity32,
		ParticleVolume:    cfg.Derived.ParticleVolume,
		ParticleMass:      cfg.Derived.ParticleMass,
		ParallelThreshold: cfg.Solver.ParallelThreshold,
	}
	cm := mpm.ConstitutiveModel{
		Mu0:          cfg.Derived.Mu0,
		Lambda0:      cfg.Derived.Lambda0,
		HardeningK:   float32(cfg.Materials.HardeningK),
		HardeningMin: float32(cfg.Materials.HardeningMin),
		HardeningMax: float32(cfg.Materials.HardeningMax),
		JellyH:       float32(cfg.Materials.JellyHardening),
		SnowClampLo:  1 - float32(cfg.Materials.SnowCompressLimit),
		SnowClampHi:  1 + float32(cfg.Materials.SnowStretchLimit),
	}

	g.solver = mpm.NewSolver(pts, prm, cm, g.backend)
	g.diverged = false
	return nil
}

// initColors resolves the configured material colors to raylib colors.
func (g *Game) initColors(cfg *config.Config) {
	for m := mpm.Material(0); m < mpm.NumMaterials; m++ {
		rgb, ok := cfg.Derived.Colors[m.String()]
		if !ok {
			rgb = config.RGB{R: 255, G: 255, B: 255}
		}
		g.colors[m] = rl.Color{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
	}
}

// Update runs one viewer frame: input, then the frame's substeps.
func (g *Game) Update() {
	g.handleInput()
	if !g.paused && !g.diverged {
		g.step()
	}
}

// UpdateHeadless runs one frame of simulation without any raylib calls.
func (g *Game) UpdateHeadless() {
	if !g.diverged {
		g.step()
	}
}

// step runs the frame's substeps and records telemetry. The first substep
// of each frame is stage-timed for the perf HUD.
func (g *Game) step() {
	cfg := config.Cfg()
	every := cfg.Solver.InvariantCheckEvery

	start := time.Now()
	n := g.substepsPerFrame * g.speed
	for i := 0; i < n; i++ {
		if i == 0 {
			g.solver.SubstepTimed(g.recordStage)
		} else {
			g.solver.Substep()
		}
		if every > 0 && g.solver.Substeps()%int64(every) == 0 {
			if err := g.solver.CheckInvariants(); err != nil {
				slog.Error("simulation diverged", "error", err, "substep", g.solver.Substeps())
				g.diverged = true
				g.paused = true
				break
			}
		}
	}
	frameDur := time.Since(start)
	g.frame++
	g.recordTelemetry(frameDur)
}

func (g *Game) recordStage(stage string, d time.Duration) {
	g.perf.Record(stage, d)
	g.stageMicros[stage] = float64(d.Microseconds())
}

// recordTelemetry assembles FrameStats for the frame just finished and
// forwards them to the collector and the CSV output.
func (g *Game) recordTelemetry(frameDur time.Duration) {
	cfg := config.Cfg()
	pts := g.solver.Particles()

	fs := telemetry.FrameStats{
		Frame:         g.frame,
		SimTime:       float64(g.solver.Substeps()) * cfg.Time.Dt,
		Particles:     pts.Len(),
		GridMass:      g.solver.Grid().TotalMass(),
		MaxSpeed:      float64(sqrt32(pts.MaxSpeedSq())),
		KineticEnergy: pts.KineticEnergy(cfg.Derived.ParticleMass),
		ClearMicros:   g.stageMicros["clear"],
		P2GMicros:     g.stageMicros["p2g"],
		GridMicros:    g.stageMicros["grid"],
		G2PMicros:     g.stageMicros["g2p"],
		FrameMicros:   float64(frameDur.Microseconds()),
	}

	if err := g.output.WriteFrame(fs); err != nil {
		slog.Warn("failed to write frame stats", "error", err)
	}
	if ws, full := g.collector.Record(fs); full {
		ws.Log()
		if err := g.output.WriteWindow(ws); err != nil {
			slog.Warn("failed to write window stats", "error", err)
		}
	}

	if cfg.Telemetry.PerfLogEvery > 0 && g.frame%int32(cfg.Telemetry.PerfLogEvery) == 0 {
		g.logPerfStats()
	}
}

// reset rebuilds particles and solver; the backend and its workers survive.
func (g *Game) reset() {
	if err := g.buildSolver(); err != nil {
		// Config was already validated at startup, so this is unexpected.
		slog.Error("reset failed", "error", err)
		return
	}
	g.frame = 0
	Logf("simulation reset")
}

// Frame returns the number of frames simulated so far.
func (g *Game) Frame() int32 { return g.frame }

// Diverged reports whether an invariant check has tripped.
func (g *Game) Diverged() bool { return g.diverged }

// Unload releases solver workers and output files.
func (g *Game) Unload() {
	g.solver.Close()
	if ws, pending := g.collector.Flush(); pending {
		ws.Log()
		if err := g.output.WriteWindow(ws); err != nil {
			slog.Warn("failed to write window stats", "error", err)
		}
	}
	if err := g.output.Close(); err != nil {
		slog.Warn("failed to close output", "error", err)
	}
}
