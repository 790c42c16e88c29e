package decomp

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Transform is the change a renderer applies to one solid on an update.
// Translation is relative to the solid's current position; Scale replaces
// the solid's current scale.
type Transform struct {
	Translation v3.Vec `json:"translation"`
	Scale       v3.Vec `json:"scale"`
}

// Identity is the transform that leaves a solid unchanged.
var Identity = Transform{Scale: v3.Vec{X: 1, Y: 1, Z: 1}}

// IsIdentity reports whether t has zero translation and unit scale.
func (t Transform) IsIdentity() bool {
	return t == Identity
}

// Update holds the transforms produced by one parameter change.
type Update struct {
	PrevDx    float64      `json:"prevDx"`
	Dx        float64      `json:"dx"`
	Translate float64      `json:"translate"` // translateAmount
	Scale     float64      `json:"scale"`     // scaleAmount
	Faces     [3]Transform `json:"faces"`
	Edges     [3]Transform `json:"edges"`
	Point     Transform    `json:"point"`
}

// For returns the transform for s. The box never moves, and neither does a
// face or edge without a real axis.
func (u Update) For(s Solid) Transform {
	i := int(s.Axis - AxisX)
	axial := i >= 0 && i < len(Axes)
	switch {
	case s.Kind == KindFace && axial:
		return u.Faces[i]
	case s.Kind == KindEdge && axial:
		return u.Edges[i]
	case s.Kind == KindPoint:
		return u.Point
	}
	return Identity
}

// Compute returns the transforms for a step from prevDx to newDx. It does
// no range checking; State.Update does that before calling it.
func Compute(cfg Config, prevDx, newDx float64) Update {
	t := cfg.translate(prevDx, newDx)
	sc := cfg.Scale.amount(newDx, cfg.InitialDx)

	u := Update{PrevDx: prevDx, Dx: newDx, Translate: t, Scale: sc}
	for i, a := range Axes {
		u.Faces[i] = transformFor(KindFace, cfg.Arrangement.lay(KindFace, a), t, sc)
		u.Edges[i] = transformFor(KindEdge, cfg.Arrangement.lay(KindEdge, a), t, sc)
	}
	u.Point = transformFor(KindPoint, AxisNone, t, sc)
	return u
}

func transformFor(k Kind, a Axis, translate, scale float64) Transform {
	mask := activeAxes(k, a)
	return Transform{
		Translation: mask.MulScalar(translate),
		Scale:       maskScale(mask, scale),
	}
}
