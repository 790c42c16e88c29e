package decomp

import (
	"fmt"
	"math"
)

// Severity says whether a finding means the pieces no longer form (x+dx)³
// or is merely informational.
type Severity int

const (
	SeverityError   Severity = iota // the decomposition is broken at this dx
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		return fmt.Errorf("invalid severity %q", b)
	}
	return nil
}

// Finding describes a single check result.
type Finding struct {
	Solid    string   `json:"solid,omitempty"` // empty for layout-wide findings
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (f Finding) Error() string {
	if f.Solid == "" {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Solid, f.Message)
}

// CheckResult bundles errors and warnings from every check.
type CheckResult struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// OK reports whether no check produced an error.
func (r CheckResult) OK() bool {
	return len(r.Errors) == 0
}

func (r *CheckResult) add(f Finding) {
	if f.Severity == SeverityError {
		r.Errors = append(r.Errors, f)
	} else {
		r.Warnings = append(r.Warnings, f)
	}
}

// checkEps absorbs floating point noise when comparing faces.
const checkEps = 1e-9

// Check verifies that the solids of l posed at dx still read as the
// decomposition of (x+dx)³: every piece has a size, no two pieces overlap,
// and the volume adds up. It is read-only.
//
// With the default policies every check passes for every dx in range.
// FullDelta below the initial dx pushes pieces into the box, and Absolute
// scaling breaks the volume identity; both show up here. The pieces
// arrangement stacks its columns on purpose and never touches the box, so
// only sizes and volume are checked there.
func Check(cfg Config, l *Layout, dx float64) CheckResult {
	var r CheckResult
	checkSizes(cfg, l, dx, &r)
	if cfg.Arrangement == Assembled {
		checkOverlaps(cfg, l, dx, &r)
		checkSeams(cfg, l, dx, &r)
	}
	checkVolume(cfg, l, dx, &r)
	return r
}

// checkSizes flags degenerate solids. A zero size is expected at dx = 0.
func checkSizes(cfg Config, l *Layout, dx float64, r *CheckResult) {
	for _, s := range l.Solids() {
		size := s.Dimensions.Mul(PoseAt(cfg, s, dx).Scale)
		smallest := math.Min(size.X, math.Min(size.Y, size.Z))
		switch {
		case smallest < 0:
			r.add(Finding{Solid: s.Name, Severity: SeverityError,
				Message: fmt.Sprintf("negative size %.4f", smallest)})
		case smallest == 0:
			r.add(Finding{Solid: s.Name, Severity: SeverityWarning,
				Message: "has no volume at this dx"})
		}
	}
}

// overlap returns the length of the shared interval on each axis.
func overlap(aMin, aMax, bMin, bMax float64) float64 {
	return math.Min(aMax, bMax) - math.Max(aMin, bMin)
}

// checkOverlaps reports every pair of solids whose interiors intersect.
func checkOverlaps(cfg Config, l *Layout, dx float64, r *CheckResult) {
	solids := l.Solids()
	for i := 0; i < len(solids); i++ {
		a := PoseAt(cfg, solids[i], dx).Bounds(solids[i])
		for j := i + 1; j < len(solids); j++ {
			b := PoseAt(cfg, solids[j], dx).Bounds(solids[j])
			ox := overlap(a.Min.X, a.Max.X, b.Min.X, b.Max.X)
			oy := overlap(a.Min.Y, a.Max.Y, b.Min.Y, b.Max.Y)
			oz := overlap(a.Min.Z, a.Max.Z, b.Min.Z, b.Max.Z)
			if ox > checkEps && oy > checkEps && oz > checkEps {
				r.add(Finding{Solid: solids[i].Name, Severity: SeverityError,
					Message: fmt.Sprintf("overlaps %s by %.4f x %.4f x %.4f", solids[j].Name, ox, oy, oz)})
			}
		}
	}
}

// checkSeams warns when a piece no longer touches the box.
func checkSeams(cfg Config, l *Layout, dx float64, r *CheckResult) {
	surface := cfg.BaseUnit / 2
	for _, s := range l.Solids() {
		if s.Kind == KindBox {
			continue
		}
		b := PoseAt(cfg, s, dx).Bounds(s)
		mask := s.ActiveAxes()
		inner := []struct{ m, v float64 }{{mask.X, b.Min.X}, {mask.Y, b.Min.Y}, {mask.Z, b.Min.Z}}
		for _, c := range inner {
			if c.m == 0 {
				continue
			}
			if seam := c.v - surface; seam > checkEps {
				r.add(Finding{Solid: s.Name, Severity: SeverityWarning,
					Message: fmt.Sprintf("sits %.4f off the box", seam)})
				break
			}
		}
	}
}

// checkVolume warns when the pieces no longer add up to (x+dx)³.
func checkVolume(cfg Config, l *Layout, dx float64, r *CheckResult) {
	got := Measure(cfg, l, dx).Total()
	want := Cube(cfg.BaseUnit, dx)
	if math.Abs(got-want) > 1e-6*math.Max(1, want) {
		r.add(Finding{Severity: SeverityWarning,
			Message: fmt.Sprintf("pieces hold %.4f, (x+dx)³ is %.4f", got, want)})
	}
}
