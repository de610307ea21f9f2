// Package config provides configuration loading and access for the simulator.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Time      TimeConfig      `yaml:"time"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Materials MaterialsConfig `yaml:"materials"`
	Emitters  []EmitterConfig `yaml:"emitters"`
	Placement PlacementConfig `yaml:"placement"`
	Solver    SolverConfig    `yaml:"solver"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds the background grid dimensions.
type GridConfig struct {
	Resolution int `yaml:"resolution"` // nodes per side over [0,1]^2
}

// TimeConfig holds the integration timing parameters.
type TimeConfig struct {
	Dt      float64 `yaml:"dt"`       // substep size in seconds
	FrameDt float64 `yaml:"frame_dt"` // target simulated time per rendered frame
}

// PhysicsConfig holds the shared physical baseline.
type PhysicsConfig struct {
	Gravity         float64 `yaml:"gravity"`
	YoungsModulus   float64 `yaml:"youngs_modulus"`
	PoissonRatio    float64 `yaml:"poisson_ratio"`
	ParticleDensity float64 `yaml:"particle_density"`
}

// MaterialsConfig holds per-material plasticity and hardening parameters.
type MaterialsConfig struct {
	HardeningK        float64 `yaml:"hardening_k"`         // exponent scale in exp(k*(1-Jp))
	HardeningMin      float64 `yaml:"hardening_min"`       // hardening clamp floor
	HardeningMax      float64 `yaml:"hardening_max"`       // hardening clamp ceiling
	JellyHardening    float64 `yaml:"jelly_hardening"`     // fixed h for jelly
	SnowCompressLimit float64 `yaml:"snow_compress_limit"` // max compression (sigma >= 1-this)
	SnowStretchLimit  float64 `yaml:"snow_stretch_limit"`  // max stretch (sigma <= 1+this)

	// Viewer colors, hex RGB per material name.
	Colors map[string]string `yaml:"colors"`
}

// EmitterConfig defines one block of particles spawned at initialization.
type EmitterConfig struct {
	Material string       `yaml:"material"` // fluid, jelly or snow
	Count    int          `yaml:"count"`
	Region   RegionConfig `yaml:"region"`
}

// RegionConfig is an axis-aligned spawn rectangle in [0,1]^2.
type RegionConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// PlacementConfig selects how emitters fill their regions.
// Mode "lattice" is fully deterministic; "random" uses the explicit seed.
type PlacementConfig struct {
	Mode string `yaml:"mode"`
	Seed int64  `yaml:"seed"` // 0 means the driver picks a time-based seed
}

// SolverConfig holds execution parameters for the substep pipeline.
type SolverConfig struct {
	Workers             int `yaml:"workers"`               // 0 = GOMAXPROCS
	ParallelThreshold   int `yaml:"parallel_threshold"`    // below this particle count stages run inline
	InvariantCheckEvery int `yaml:"invariant_check_every"` // substeps between divergence scans, 0 = off
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow  int `yaml:"stats_window"`   // frames per aggregation window
	PerfLogEvery int `yaml:"perf_log_every"` // frames between perf dumps, 0 = off
}

// RGB is a parsed material color.
type RGB struct {
	R, G, B uint8
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DX               float32 // cell size, 1/resolution
	InvDX            float32
	Dt32             float32
	Gravity32        float32
	Mu0              float32 // Lame mu from E, nu
	Lambda0          float32 // Lame lambda from E, nu
	ParticleVolume   float32
	ParticleMass     float32
	SubstepsPerFrame int
	TotalParticles   int
	Colors           map[string]RGB
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	if c.Grid.Resolution <= 0 {
		return fmt.Errorf("grid.resolution must be positive, got %d", c.Grid.Resolution)
	}
	if c.Time.Dt <= 0 {
		return fmt.Errorf("time.dt must be positive, got %g", c.Time.Dt)
	}

	dx := 1 / float64(c.Grid.Resolution)
	c.Derived.DX = float32(dx)
	c.Derived.InvDX = float32(c.Grid.Resolution)
	c.Derived.Dt32 = float32(c.Time.Dt)
	c.Derived.Gravity32 = float32(c.Physics.Gravity)

	// Standard elasticity relations for the Lame parameters.
	e, nu := c.Physics.YoungsModulus, c.Physics.PoissonRatio
	c.Derived.Mu0 = float32(e / (2 * (1 + nu)))
	c.Derived.Lambda0 = float32(e * nu / ((1 + nu) * (1 - 2*nu)))

	vol := (dx * 0.5) * (dx * 0.5)
	c.Derived.ParticleVolume = float32(vol)
	density := c.Physics.ParticleDensity
	if density == 0 {
		density = 1
	}
	c.Derived.ParticleMass = float32(vol * density)

	substeps := int(c.Time.FrameDt / c.Time.Dt)
	if substeps < 1 {
		substeps = 1
	}
	c.Derived.SubstepsPerFrame = substeps

	total := 0
	for _, em := range c.Emitters {
		if em.Count < 0 {
			return fmt.Errorf("emitter %q has negative count %d", em.Material, em.Count)
		}
		total += em.Count
	}
	c.Derived.TotalParticles = total

	c.Derived.Colors = make(map[string]RGB, len(c.Materials.Colors))
	for name, hex := range c.Materials.Colors {
		rgb, err := parseHexColor(hex)
		if err != nil {
			return fmt.Errorf("materials.colors.%s: %w", name, err)
		}
		c.Derived.Colors[name] = rgb
	}
	return nil
}

// parseHexColor parses "RRGGBB" with an optional leading '#'.
func parseHexColor(s string) (RGB, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("expected RRGGBB hex color, got %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
