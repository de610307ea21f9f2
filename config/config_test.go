package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Grid.Resolution != 128 {
		t.Errorf("grid resolution = %d, want 128", cfg.Grid.Resolution)
	}
	if cfg.Time.Dt != 1e-4 {
		t.Errorf("dt = %v, want 1e-4", cfg.Time.Dt)
	}
	if cfg.Physics.Gravity != 70 {
		t.Errorf("gravity = %v, want 70", cfg.Physics.Gravity)
	}
	if len(cfg.Emitters) != 3 {
		t.Fatalf("emitters = %d, want 3", len(cfg.Emitters))
	}
	if cfg.Emitters[0].Material != "fluid" || cfg.Emitters[1].Material != "jelly" || cfg.Emitters[2].Material != "snow" {
		t.Errorf("emitter materials = %v %v %v",
			cfg.Emitters[0].Material, cfg.Emitters[1].Material, cfg.Emitters[2].Material)
	}
}

func TestDerivedValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	d := cfg.Derived

	if d.SubstepsPerFrame != 20 {
		t.Errorf("substeps per frame = %d, want 20", d.SubstepsPerFrame)
	}
	if d.TotalParticles != 10000 {
		t.Errorf("total particles = %d, want 10000", d.TotalParticles)
	}

	// Lame parameters for E=1000, nu=0.2.
	closeTo(t, "mu0", float64(d.Mu0), 1000.0/2.4)
	closeTo(t, "lambda0", float64(d.Lambda0), 1000.0*0.2/(1.2*0.6))

	closeTo(t, "dx", float64(d.DX), 1.0/128)
	closeTo(t, "inv dx", float64(d.InvDX), 128)
	closeTo(t, "particle volume", float64(d.ParticleVolume), (0.5/128)*(0.5/128))
	// Unit density: mass equals volume.
	if d.ParticleMass != d.ParticleVolume {
		t.Errorf("mass %v != volume %v at unit density", d.ParticleMass, d.ParticleVolume)
	}

	want := map[string]RGB{
		"fluid": {R: 0x36, G: 0xEE, B: 0xFF},
		"jelly": {R: 0xFC, G: 0xA1, B: 0x3F},
		"snow":  {R: 0xEE, G: 0xEE, B: 0xF0},
	}
	for name, rgb := range want {
		if got := d.Colors[name]; got != rgb {
			t.Errorf("color %s = %+v, want %+v", name, got, rgb)
		}
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	override := `
physics:
  gravity: 9.81
grid:
  resolution: 64
placement:
  mode: lattice
  seed: 1234
`
	if err := os.WriteFile(path, []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load override: %v", err)
	}

	if cfg.Physics.Gravity != 9.81 {
		t.Errorf("gravity = %v, want 9.81", cfg.Physics.Gravity)
	}
	if cfg.Grid.Resolution != 64 {
		t.Errorf("resolution = %d, want 64", cfg.Grid.Resolution)
	}
	if cfg.Placement.Mode != "lattice" || cfg.Placement.Seed != 1234 {
		t.Errorf("placement = %+v", cfg.Placement)
	}

	// Untouched fields keep their defaults.
	if cfg.Time.Dt != 1e-4 {
		t.Errorf("dt lost its default: %v", cfg.Time.Dt)
	}
	if len(cfg.Emitters) != 3 {
		t.Errorf("emitters lost their defaults: %d", len(cfg.Emitters))
	}

	// Derived values follow the override.
	closeTo(t, "overridden dx", float64(cfg.Derived.DX), 1.0/64)
	closeTo(t, "overridden gravity", float64(cfg.Derived.Gravity32), 9.81)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"bad resolution": "grid:\n  resolution: 0\n",
		"bad dt":         "time:\n  dt: -1\n",
		"bad color":      "materials:\n  colors:\n    fluid: nothex\n",
		"bad count":      "emitters:\n  - material: fluid\n    count: -5\n",
		"bad yaml":       "grid: [unclosed\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: Load accepted invalid config", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load accepted missing file")
	}
}

func TestParseHexColor(t *testing.T) {
	rgb, err := parseHexColor("#36EEFF")
	if err != nil {
		t.Fatal(err)
	}
	if rgb != (RGB{R: 0x36, G: 0xEE, B: 0xFF}) {
		t.Errorf("parsed %+v", rgb)
	}
	for _, bad := range []string{"", "fff", "36EEFF00", "gggggg"} {
		if _, err := parseHexColor(bad); err == nil {
			t.Errorf("accepted %q", bad)
		}
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reload written config: %v", err)
	}
	if back.Grid.Resolution != cfg.Grid.Resolution || back.Time.Dt != cfg.Time.Dt {
		t.Error("round trip changed core fields")
	}
	if len(back.Emitters) != len(cfg.Emitters) {
		t.Errorf("round trip changed emitters: %d vs %d", len(back.Emitters), len(cfg.Emitters))
	}
}

func closeTo(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-4*math.Max(1, math.Abs(want)) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
