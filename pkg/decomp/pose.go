package decomp

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Pose is the absolute placement of a solid at some dx: the center of the
// scaled body and its per-axis scale relative to Solid.Dimensions.
type Pose struct {
	Position v3.Vec `json:"position"`
	Scale    v3.Vec `json:"scale"`
}

// PoseAt computes the pose of solid at dx from scratch. Incremental
// translations telescope, so this equals the initial offset plus the sum of
// every Transform applied on the way from InitialDx to dx.
func PoseAt(cfg Config, solid Solid, dx float64) Pose {
	mask := solid.ActiveAxes()
	t := cfg.translate(cfg.InitialDx, dx)
	return Pose{
		Position: solid.InitialOffset.Add(mask.MulScalar(t)),
		Scale:    maskScale(mask, cfg.Scale.amount(dx, cfg.InitialDx)),
	}
}

// Apply returns p after a renderer has applied t to it.
func (p Pose) Apply(t Transform) Pose {
	return Pose{Position: p.Position.Add(t.Translation), Scale: t.Scale}
}

// Matrix returns the pose as a scale-then-translate matrix.
func (p Pose) Matrix() sdf.M44 {
	return sdf.Translate3d(p.Position).Mul(sdf.Scale3d(p.Scale))
}

// Bounds returns the axis-aligned box occupied by solid at pose p.
func (p Pose) Bounds(solid Solid) sdf.Box3 {
	return sdf.NewBox3(p.Position, solid.Dimensions.Mul(p.Scale))
}

// Volumes breaks a decomposition's volume into the binomial terms.
type Volumes struct {
	Box   float64 `json:"box"`   // x³
	Faces float64 `json:"faces"` // 3x²dx
	Edges float64 `json:"edges"` // 3x·dx²
	Point float64 `json:"point"` // dx³
}

// Total returns the sum of all terms.
func (v Volumes) Total() float64 {
	return v.Box + v.Faces + v.Edges + v.Point
}

// Measure sums the scaled volume of each solid in l at dx.
func Measure(cfg Config, l *Layout, dx float64) Volumes {
	vol := func(s Solid) float64 {
		size := s.Dimensions.Mul(PoseAt(cfg, s, dx).Scale)
		return size.X * size.Y * size.Z
	}
	v := Volumes{Box: vol(l.Box), Point: vol(l.Point)}
	for i := range Axes {
		v.Faces += vol(l.Faces[i])
		v.Edges += vol(l.Edges[i])
	}
	return v
}

// Cube returns (x+dx)³.
func Cube(x, dx float64) float64 {
	return math.Pow(x+dx, 3)
}

// Snap rounds dx to the nearest multiple of Step above MinDx and keeps the
// result inside [MinDx, MaxDx], so a range that is not a whole number of
// steps still reaches MaxDx. A zero Step returns dx unchanged.
func (c Config) Snap(dx float64) float64 {
	if c.Step <= 0 {
		return dx
	}
	n := math.Round((dx - c.MinDx) / c.Step)
	return max(c.MinDx, min(c.MinDx+n*c.Step, c.MaxDx))
}
