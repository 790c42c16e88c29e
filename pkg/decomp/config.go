package decomp

import (
	"fmt"
	"math"
)

// Defaults observed in the original slider setup.
const (
	DefaultBaseUnit  = 10.0
	DefaultInitialDx = 1.5
	DefaultMinDx     = 0.0
	DefaultMaxDx     = 3.0
	DefaultStep      = 0.001
)

// Palette holds the display color of each solid kind as "#rrggbb".
type Palette struct {
	Box   string `toml:"box" json:"box"`
	Face  string `toml:"face" json:"face"`
	Edge  string `toml:"edge" json:"edge"`
	Point string `toml:"point" json:"point"`
}

// Opacity holds per-kind opacities in [0, 1].
type Opacity struct {
	Box   float64 `toml:"box" json:"box"`
	Face  float64 `toml:"face" json:"face"`
	Edge  float64 `toml:"edge" json:"edge"`
	Point float64 `toml:"point" json:"point"`
}

// Config is the fixed part of a session: everything except the current dx.
type Config struct {
	BaseUnit  float64 `toml:"base_unit" json:"baseUnit"`
	InitialDx float64 `toml:"initial_dx" json:"initialDx"`
	Gap       float64 `toml:"gap" json:"gap"`
	// Expansion pushes pieces further out by InitialDx*Expansion.
	Expansion float64 `toml:"expansion" json:"expansion"`

	MinDx float64 `toml:"min_dx" json:"minDx"`
	MaxDx float64 `toml:"max_dx" json:"maxDx"`
	Step  float64 `toml:"step" json:"step"`

	Arrangement Arrangement `toml:"arrangement" json:"arrangement"`

	Translate TranslatePolicy `toml:"translate" json:"translate"`
	Scale     ScalePolicy     `toml:"scale" json:"scale"`
	Bounds    BoundsPolicy    `toml:"bounds" json:"bounds"`

	Colors  Palette `toml:"colors" json:"colors"`
	Opacity Opacity `toml:"opacity" json:"opacity"`
}

// DefaultConfig returns the configuration used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		BaseUnit:  DefaultBaseUnit,
		InitialDx: DefaultInitialDx,
		MinDx:     DefaultMinDx,
		MaxDx:     DefaultMaxDx,
		Step:      DefaultStep,
		Translate: HalfDelta,
		Scale:     Ratio,
		Bounds:    Reject,
		Colors: Palette{
			Box:   "#59b2e3",
			Face:  "#d4e678",
			Edge:  "#8888ff",
			Point: "#e88133",
		},
		Opacity: Opacity{Box: 0.8, Face: 0.5, Edge: 0.8, Point: 0.8},
	}
}

// Validate checks the invariants a layout depends on. The returned error
// wraps ErrInvalidConfiguration.
func (c Config) Validate() error {
	finite := []struct {
		field string
		v     float64
	}{
		{"base_unit", c.BaseUnit},
		{"initial_dx", c.InitialDx},
		{"gap", c.Gap},
		{"expansion", c.Expansion},
		{"min_dx", c.MinDx},
		{"max_dx", c.MaxDx},
		{"step", c.Step},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ConfigError{Field: f.field, Message: "must be finite"}
		}
	}

	if c.BaseUnit <= 0 {
		return &ConfigError{Field: "base_unit", Message: fmt.Sprintf("%g must be positive", c.BaseUnit)}
	}
	if c.InitialDx <= 0 {
		return &ConfigError{Field: "initial_dx", Message: fmt.Sprintf("%g must be positive", c.InitialDx)}
	}
	if c.Gap < 0 {
		return &ConfigError{Field: "gap", Message: fmt.Sprintf("%g must not be negative", c.Gap)}
	}
	if c.Expansion < 0 {
		return &ConfigError{Field: "expansion", Message: fmt.Sprintf("%g must not be negative", c.Expansion)}
	}
	if c.MinDx < 0 {
		return &ConfigError{Field: "min_dx", Message: fmt.Sprintf("%g must not be negative", c.MinDx)}
	}
	if c.MinDx >= c.MaxDx {
		return &ConfigError{Field: "min_dx", Message: fmt.Sprintf("%g must be below max_dx %g", c.MinDx, c.MaxDx)}
	}
	if c.InitialDx < c.MinDx || c.InitialDx > c.MaxDx {
		return &ConfigError{Field: "initial_dx", Message: fmt.Sprintf("%g outside [%g, %g]", c.InitialDx, c.MinDx, c.MaxDx)}
	}
	if c.Step < 0 {
		return &ConfigError{Field: "step", Message: fmt.Sprintf("%g must not be negative", c.Step)}
	}
	if c.Translate != HalfDelta && c.Translate != FullDelta {
		return &ConfigError{Field: "translate", Message: fmt.Sprintf("unknown policy %d", c.Translate)}
	}
	if c.Scale != Ratio && c.Scale != Absolute {
		return &ConfigError{Field: "scale", Message: fmt.Sprintf("unknown policy %d", c.Scale)}
	}
	if c.Bounds != Reject && c.Bounds != Clamp {
		return &ConfigError{Field: "bounds", Message: fmt.Sprintf("unknown policy %d", c.Bounds)}
	}
	if c.Arrangement != Assembled && c.Arrangement != Pieces {
		return &ConfigError{Field: "arrangement", Message: fmt.Sprintf("unknown arrangement %d", c.Arrangement)}
	}
	return nil
}

// offset is the distance from the origin to a piece's center along each of
// its active axes.
func (c Config) offset() float64 {
	return (c.BaseUnit+c.InitialDx)/2 + c.Gap + c.InitialDx*c.Expansion
}

func (c Config) color(k Kind) string {
	switch k {
	case KindFace:
		return c.Colors.Face
	case KindEdge:
		return c.Colors.Edge
	case KindPoint:
		return c.Colors.Point
	}
	return c.Colors.Box
}

func (c Config) opacity(k Kind) float64 {
	switch k {
	case KindFace:
		return c.Opacity.Face
	case KindEdge:
		return c.Opacity.Edge
	case KindPoint:
		return c.Opacity.Point
	}
	return c.Opacity.Box
}
