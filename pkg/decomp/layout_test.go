package decomp

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const tol = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= tol
}

func nearVec(a, b v3.Vec) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

// scenarioConfig is x=10, dx0=1.5, gap=0.
func scenarioConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseUnit = 10
	cfg.InitialDx = 1.5
	cfg.Gap = 0
	return cfg
}

func mustGenerate(t *testing.T, cfg Config) *Layout {
	t.Helper()
	l, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return l
}

func TestGenerateScenario(t *testing.T) {
	l := mustGenerate(t, scenarioConfig())

	if l.Box.InitialOffset != (v3.Vec{}) {
		t.Errorf("box offset = %v, want origin", l.Box.InitialOffset)
	}
	if l.Box.Dimensions != (v3.Vec{X: 10, Y: 10, Z: 10}) {
		t.Errorf("box dimensions = %v, want 10x10x10", l.Box.Dimensions)
	}
	if l.Box.Axis != AxisNone {
		t.Errorf("box axis = %v, want none", l.Box.Axis)
	}

	faceDims := []v3.Vec{
		{X: 1.5, Y: 10, Z: 10},
		{X: 10, Y: 1.5, Z: 10},
		{X: 10, Y: 10, Z: 1.5},
	}
	faceOffsets := []v3.Vec{
		{X: 5.75},
		{Y: 5.75},
		{Z: 5.75},
	}
	for i, f := range l.Faces {
		if f.Kind != KindFace || f.Axis != Axes[i] {
			t.Errorf("faces[%d] = %v/%v, want face/%v", i, f.Kind, f.Axis, Axes[i])
		}
		if !nearVec(f.Dimensions, faceDims[i]) {
			t.Errorf("faces[%d] dimensions = %v, want %v", i, f.Dimensions, faceDims[i])
		}
		if !nearVec(f.InitialOffset, faceOffsets[i]) {
			t.Errorf("faces[%d] offset = %v, want %v", i, f.InitialOffset, faceOffsets[i])
		}
	}

	edgeDims := []v3.Vec{
		{X: 10, Y: 1.5, Z: 1.5},
		{X: 1.5, Y: 10, Z: 1.5},
		{X: 1.5, Y: 1.5, Z: 10},
	}
	edgeOffsets := []v3.Vec{
		{Y: 5.75, Z: 5.75},
		{X: 5.75, Z: 5.75},
		{X: 5.75, Y: 5.75},
	}
	for i, e := range l.Edges {
		if e.Kind != KindEdge || e.Axis != Axes[i] {
			t.Errorf("edges[%d] = %v/%v, want edge/%v", i, e.Kind, e.Axis, Axes[i])
		}
		if !nearVec(e.Dimensions, edgeDims[i]) {
			t.Errorf("edges[%d] dimensions = %v, want %v", i, e.Dimensions, edgeDims[i])
		}
		if !nearVec(e.InitialOffset, edgeOffsets[i]) {
			t.Errorf("edges[%d] offset = %v, want %v", i, e.InitialOffset, edgeOffsets[i])
		}
	}

	if !nearVec(l.Point.Dimensions, v3.Vec{X: 1.5, Y: 1.5, Z: 1.5}) {
		t.Errorf("point dimensions = %v, want 1.5 cube", l.Point.Dimensions)
	}
	if !nearVec(l.Point.InitialOffset, v3.Vec{X: 5.75, Y: 5.75, Z: 5.75}) {
		t.Errorf("point offset = %v, want 5.75 on all axes", l.Point.InitialOffset)
	}
}

func TestGenerateGapAndExpansion(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Gap = 0.25
	cfg.Expansion = 0.5
	l := mustGenerate(t, cfg)

	// (10+1.5)/2 + 0.25 + 1.5*0.5
	want := 5.75 + 0.25 + 0.75
	if !near(l.Faces[1].InitialOffset.Y, want) {
		t.Errorf("face-y offset = %f, want %f", l.Faces[1].InitialOffset.Y, want)
	}
	if !near(l.Point.InitialOffset.Z, want) {
		t.Errorf("point offset z = %f, want %f", l.Point.InitialOffset.Z, want)
	}
}

func TestGenerateFlushWithBox(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Gap = 0.1
	l := mustGenerate(t, cfg)

	// The inner side of each piece sits exactly gap beyond the box surface.
	inner := cfg.BaseUnit/2 + cfg.Gap
	for _, s := range l.Solids() {
		if s.Kind == KindBox {
			continue
		}
		lo := s.InitialOffset.Sub(s.Dimensions.MulScalar(0.5))
		mask := s.ActiveAxes()
		for _, c := range []struct{ m, v float64 }{{mask.X, lo.X}, {mask.Y, lo.Y}, {mask.Z, lo.Z}} {
			if c.m != 0 && !near(c.v, inner) {
				t.Errorf("%s inner side at %f, want %f", s.Name, c.v, inner)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := scenarioConfig()
	a := mustGenerate(t, cfg)
	b := mustGenerate(t, cfg)
	if *a != *b {
		t.Error("Generate is not deterministic")
	}
}

func TestGenerateColors(t *testing.T) {
	cfg := DefaultConfig()
	l := mustGenerate(t, cfg)
	if l.Box.Color != cfg.Colors.Box {
		t.Errorf("box color = %q, want %q", l.Box.Color, cfg.Colors.Box)
	}
	for _, f := range l.Faces {
		if f.Color != cfg.Colors.Face || f.Opacity != cfg.Opacity.Face {
			t.Errorf("%s color/opacity = %q/%v", f.Name, f.Color, f.Opacity)
		}
	}
	if l.Point.Color != cfg.Colors.Point {
		t.Errorf("point color = %q, want %q", l.Point.Color, cfg.Colors.Point)
	}
}

func TestGenerateInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"zero base unit", func(c *Config) { c.BaseUnit = 0 }, "base_unit"},
		{"negative base unit", func(c *Config) { c.BaseUnit = -1 }, "base_unit"},
		{"zero initial dx", func(c *Config) { c.InitialDx = 0 }, "initial_dx"},
		{"min equals max", func(c *Config) { c.MinDx, c.MaxDx = 1, 1 }, "min_dx"},
		{"min above max", func(c *Config) { c.MinDx, c.MaxDx = 2, 1 }, "min_dx"},
		{"negative min", func(c *Config) { c.MinDx = -1 }, "min_dx"},
		{"initial outside range", func(c *Config) { c.InitialDx = 5 }, "initial_dx"},
		{"negative gap", func(c *Config) { c.Gap = -0.1 }, "gap"},
		{"nan base unit", func(c *Config) { c.BaseUnit = math.NaN() }, "base_unit"},
		{"infinite max", func(c *Config) { c.MaxDx = math.Inf(1) }, "max_dx"},
		{"unknown translate policy", func(c *Config) { c.Translate = 7 }, "translate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			_, err := Generate(cfg)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("Generate() error = %v, want ErrInvalidConfiguration", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("error %v is not a *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestLayoutSolidsAndLookup(t *testing.T) {
	l := mustGenerate(t, DefaultConfig())
	solids := l.Solids()
	if len(solids) != 8 {
		t.Fatalf("Solids() returned %d, want 8", len(solids))
	}
	seen := make(map[string]bool)
	for _, s := range solids {
		if seen[s.Name] {
			t.Errorf("duplicate solid name %q", s.Name)
		}
		seen[s.Name] = true
	}
	s, ok := l.Lookup("edge-z")
	if !ok || s.Kind != KindEdge || s.Axis != AxisZ {
		t.Errorf("Lookup(edge-z) = %+v, %v", s, ok)
	}
	if _, ok := l.Lookup("nope"); ok {
		t.Error("Lookup(nope) found a solid")
	}
}
