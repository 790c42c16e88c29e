package decomp

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Solid is one named body of the decomposition.
type Solid struct {
	Name          string  `json:"name"`
	Kind          Kind    `json:"kind"`
	Axis          Axis    `json:"axis"`
	Lay           Axis    `json:"lay,omitempty"` // orientation when it differs from Axis
	Dimensions    v3.Vec  `json:"dimensions"`    // size at dx = initialDx
	InitialOffset v3.Vec  `json:"initialOffset"` // center at dx = initialDx
	Color         string  `json:"color"`
	Opacity       float64 `json:"opacity"`
}

// ActiveAxes returns the 0/1 mask of axes the solid is displaced along and
// scaled on.
func (s Solid) ActiveAxes() v3.Vec {
	if s.Lay != AxisNone {
		return activeAxes(s.Kind, s.Lay)
	}
	return activeAxes(s.Kind, s.Axis)
}

// Layout groups the eight solids by role. Faces and Edges are indexed in
// X, Y, Z order.
type Layout struct {
	Box   Solid    `json:"box"`
	Faces [3]Solid `json:"faces"`
	Edges [3]Solid `json:"edges"`
	Point Solid    `json:"point"`
}

// Solids returns all eight solids: box, faces, edges, point.
func (l *Layout) Solids() []Solid {
	out := make([]Solid, 0, 8)
	out = append(out, l.Box)
	out = append(out, l.Faces[:]...)
	out = append(out, l.Edges[:]...)
	out = append(out, l.Point)
	return out
}

// Lookup returns the solid with the given name.
func (l *Layout) Lookup(name string) (Solid, bool) {
	for _, s := range l.Solids() {
		if s.Name == name {
			return s, true
		}
	}
	return Solid{}, false
}

// Generate builds the eight solids for cfg. The box is centered at the
// origin. When assembled, every other piece sits on the box's positive
// side at distance (BaseUnit+InitialDx)/2 + Gap (+ InitialDx*Expansion)
// along each of its active axes. See Pieces for the other arrangement.
func Generate(cfg Config) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("generate layout: %w", err)
	}
	if cfg.Arrangement == Pieces {
		return generatePieces(cfg), nil
	}

	x, dx := cfg.BaseUnit, cfg.InitialDx
	d := cfg.offset()

	l := &Layout{
		Box:   newSolid(cfg, "box", KindBox, AxisNone, v3.Vec{X: x, Y: x, Z: x}, 0),
		Point: newSolid(cfg, "point", KindPoint, AxisNone, v3.Vec{X: dx, Y: dx, Z: dx}, d),
	}
	for i, a := range Axes {
		// Thin along the active axes, x long along the rest.
		faceMask := activeAxes(KindFace, a)
		l.Faces[i] = newSolid(cfg, "face-"+a.String(), KindFace, a, blend(faceMask, dx, x), d)

		edgeMask := activeAxes(KindEdge, a)
		l.Edges[i] = newSolid(cfg, "edge-"+a.String(), KindEdge, a, blend(edgeMask, dx, x), d)
	}
	return l, nil
}

func newSolid(cfg Config, name string, k Kind, a Axis, dims v3.Vec, offset float64) Solid {
	return Solid{
		Name:          name,
		Kind:          k,
		Axis:          a,
		Dimensions:    dims,
		InitialOffset: activeAxes(k, a).MulScalar(offset),
		Color:         cfg.color(k),
		Opacity:       cfg.opacity(k),
	}
}

// blend returns on where mask is set and off elsewhere.
func blend(mask v3.Vec, on, off float64) v3.Vec {
	sel := func(m float64) float64 {
		if m != 0 {
			return on
		}
		return off
	}
	return v3.Vec{X: sel(mask.X), Y: sel(mask.Y), Z: sel(mask.Z)}
}
