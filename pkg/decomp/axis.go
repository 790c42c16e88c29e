package decomp

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Axis identifies one of the three orthogonal directions.
type Axis int

const (
	AxisNone Axis = iota // box and point have no axis
	AxisX
	AxisY
	AxisZ
)

// Axes lists the three real axes in X, Y, Z order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	case AxisNone:
		return "none"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Axis) UnmarshalText(b []byte) error {
	if string(b) == "none" {
		*a = AxisNone
		return nil
	}
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAxis converts "x", "y" or "z" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return AxisNone, fmt.Errorf("invalid axis %q, expected x, y, or z", s)
}

// Unit returns the unit vector along a. AxisNone yields the zero vector.
func (a Axis) Unit() v3.Vec {
	switch a {
	case AxisX:
		return v3.Vec{X: 1}
	case AxisY:
		return v3.Vec{Y: 1}
	case AxisZ:
		return v3.Vec{Z: 1}
	}
	return v3.Vec{}
}

// Kind is the role a solid plays in the decomposition.
type Kind int

const (
	KindBox   Kind = iota // x³
	KindFace              // x²·dx, one per axis
	KindEdge              // x·dx², one per axis
	KindPoint             // dx³
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindFace:
		return "face"
	case KindEdge:
		return "edge"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for _, c := range []Kind{KindBox, KindFace, KindEdge, KindPoint} {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("invalid kind %q", b)
}

// axisSet is a 0/1 mask over X, Y, Z.
type axisSet = v3.Vec

var (
	noAxes  = axisSet{}
	allAxes = axisSet{X: 1, Y: 1, Z: 1}
)

// activeAxes returns the axes along which a solid of the given kind and
// axis is dx-thick. Those are the axes it is displaced along and scaled on;
// every other axis stays at offset 0 and scale 1.
//
//	face A  -> {A}
//	edge A  -> all axes except A
//	point   -> all axes
//	box     -> none
func activeAxes(k Kind, a Axis) axisSet {
	switch k {
	case KindFace:
		return a.Unit()
	case KindEdge:
		return allAxes.Sub(a.Unit())
	case KindPoint:
		return allAxes
	}
	return noAxes
}

// maskScale returns a scale vector that is s on the active axes and 1 on
// the others.
func maskScale(mask axisSet, s float64) v3.Vec {
	return v3.Vec{
		X: pick(mask.X, s),
		Y: pick(mask.Y, s),
		Z: pick(mask.Z, s),
	}
}

func pick(m, s float64) float64 {
	if m != 0 {
		return s
	}
	return 1
}
