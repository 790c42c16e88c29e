package decomp

import "fmt"

// TranslatePolicy selects how far pieces move per update.
type TranslatePolicy int

const (
	// HalfDelta moves pieces by (new-prev)/2. Pieces scale about their
	// centers, so moving the center by half the growth keeps the inner
	// side flush with the box.
	HalfDelta TranslatePolicy = iota
	// FullDelta moves pieces by new-prev. The seam to the box widens by
	// half the growth.
	FullDelta
)

func (p TranslatePolicy) String() string {
	switch p {
	case HalfDelta:
		return "half"
	case FullDelta:
		return "full"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p TranslatePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *TranslatePolicy) UnmarshalText(b []byte) error {
	switch string(b) {
	case "half", "half-delta":
		*p = HalfDelta
	case "full", "full-delta":
		*p = FullDelta
	default:
		return &ConfigError{Field: "translate", Message: fmt.Sprintf("unknown policy %q, expected half or full", b)}
	}
	return nil
}

// amount returns the incremental translation for a step from prev to next.
func (p TranslatePolicy) amount(prev, next float64) float64 {
	if p == FullDelta {
		return next - prev
	}
	return (next - prev) / 2
}

// ScalePolicy selects how dx maps to a scale factor.
type ScalePolicy int

const (
	// Ratio scales by dx/initialDx, so the generated dimensions are the
	// unit of scale and dx == initialDx is the identity.
	Ratio ScalePolicy = iota
	// Absolute uses dx itself as the scale factor. Only consistent when
	// initialDx is 1.
	Absolute
)

func (p ScalePolicy) String() string {
	switch p {
	case Ratio:
		return "ratio"
	case Absolute:
		return "absolute"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p ScalePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ScalePolicy) UnmarshalText(b []byte) error {
	switch string(b) {
	case "ratio":
		*p = Ratio
	case "absolute":
		*p = Absolute
	default:
		return &ConfigError{Field: "scale", Message: fmt.Sprintf("unknown policy %q, expected ratio or absolute", b)}
	}
	return nil
}

func (p ScalePolicy) amount(dx, initialDx float64) float64 {
	if p == Absolute {
		return dx
	}
	return dx / initialDx
}

// BoundsPolicy selects what happens to a dx outside [MinDx, MaxDx].
type BoundsPolicy int

const (
	Reject BoundsPolicy = iota // fail with ErrInvalidParameter
	Clamp                      // pull the value into range
)

func (p BoundsPolicy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Clamp:
		return "clamp"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p BoundsPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *BoundsPolicy) UnmarshalText(b []byte) error {
	switch string(b) {
	case "reject":
		*p = Reject
	case "clamp":
		*p = Clamp
	default:
		return &ConfigError{Field: "bounds", Message: fmt.Sprintf("unknown policy %q, expected reject or clamp", b)}
	}
	return nil
}
