package decomp

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Arrangement selects where Generate places the solids.
type Arrangement int

const (
	// Assembled packs the pieces around the box so together they form
	// the (x+dx)³ cube. Updates move and rescale them.
	Assembled Arrangement = iota
	// Pieces lays the terms out beside the box in three columns (faces,
	// edges, point), each column fanned out diagonally. The pieces keep
	// their places and only rescale.
	Pieces
)

func (a Arrangement) String() string {
	switch a {
	case Assembled:
		return "assembled"
	case Pieces:
		return "pieces"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Arrangement) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Arrangement) UnmarshalText(b []byte) error {
	switch string(b) {
	case "assembled", "cube":
		*a = Assembled
	case "pieces":
		*a = Pieces
	default:
		return &ConfigError{Field: "arrangement", Message: fmt.Sprintf("unknown arrangement %q, expected assembled or pieces", b)}
	}
	return nil
}

// Column positions along X and the diagonal fan step, in tenths of the
// base unit.
const (
	faceColumn  = 15
	edgeColumn  = 27
	pointColumn = 38
	fanStep     = 1
)

// lay returns the axis whose row of the kind table gives a solid's thin
// sides. Assembled pieces use their own axis. In the pieces arrangement
// every face lies flat (thin along Z) and every edge stands upright (thin
// along X and Z), so each column reads as a stack of equal pieces.
func (a Arrangement) lay(k Kind, axis Axis) Axis {
	if a != Pieces {
		return axis
	}
	switch k {
	case KindFace:
		return AxisZ
	case KindEdge:
		return AxisY
	}
	return axis
}

// translate returns the incremental translation for a step from prev to
// next. Laid-out pieces never move.
func (c Config) translate(prev, next float64) float64 {
	if c.Arrangement == Pieces {
		return 0
	}
	return c.Translate.amount(prev, next)
}

// generatePieces builds the pieces arrangement: the box at the origin, the
// faces, edges and point in columns along +X, and the three pieces of each
// column offset by -1, 0 and +1 fan steps along (X, -Y, Z).
func generatePieces(cfg Config) *Layout {
	x := cfg.BaseUnit
	u := x / 10

	l := &Layout{
		Box:   newSolid(cfg, "box", KindBox, AxisNone, v3.Vec{X: x, Y: x, Z: x}, 0),
		Point: laidSolid(cfg, "point", KindPoint, AxisNone, v3.Vec{X: pointColumn * u}),
	}
	for i, a := range Axes {
		o := float64(i-1) * fanStep * u
		fan := v3.Vec{X: o, Y: -o, Z: o}
		l.Faces[i] = laidSolid(cfg, "face-"+a.String(), KindFace, a, v3.Vec{X: faceColumn * u}.Add(fan))
		l.Edges[i] = laidSolid(cfg, "edge-"+a.String(), KindEdge, a, v3.Vec{X: edgeColumn * u}.Add(fan))
	}
	return l
}

func laidSolid(cfg Config, name string, k Kind, a Axis, at v3.Vec) Solid {
	lay := cfg.Arrangement.lay(k, a)
	s := newSolid(cfg, name, k, a, blend(activeAxes(k, lay), cfg.InitialDx, cfg.BaseUnit), 0)
	s.InitialOffset = at
	if lay != a {
		s.Lay = lay
	}
	return s
}
