package decomp

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func mustState(t *testing.T, cfg Config) *State {
	t.Helper()
	s, err := NewState(cfg)
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	return s
}

func allTransforms(u Update) []Transform {
	out := append([]Transform{}, u.Faces[:]...)
	out = append(out, u.Edges[:]...)
	return append(out, u.Point)
}

func TestUpdateIdentityFixedPoint(t *testing.T) {
	for _, cfg := range []Config{scenarioConfig(), DefaultConfig()} {
		s := mustState(t, cfg)
		u, err := s.Update(cfg.InitialDx)
		if err != nil {
			t.Fatalf("Update(initialDx) error = %v", err)
		}
		for i, tr := range allTransforms(u) {
			if !tr.IsIdentity() {
				t.Errorf("transform %d = %+v, want identity", i, tr)
			}
		}
	}
}

func TestUpdateReturnToInitialNormalizes(t *testing.T) {
	s := mustState(t, scenarioConfig())
	l := s.Layout()

	poses := make(map[string]Pose)
	for _, solid := range l.Solids() {
		poses[solid.Name] = Pose{Position: solid.InitialOffset, Scale: v3.Vec{X: 1, Y: 1, Z: 1}}
	}
	for _, dx := range []float64{2.2, 0.3, 3, 1.5} {
		u, err := s.Update(dx)
		if err != nil {
			t.Fatalf("Update(%v) error = %v", dx, err)
		}
		for _, solid := range l.Solids() {
			poses[solid.Name] = poses[solid.Name].Apply(u.For(solid))
		}
	}

	// Back at the initial dx, every solid has zero net translation and unit scale.
	for _, solid := range l.Solids() {
		p := poses[solid.Name]
		if !nearVec(p.Position, solid.InitialOffset) {
			t.Errorf("%s position = %v, want %v", solid.Name, p.Position, solid.InitialOffset)
		}
		if !nearVec(p.Scale, v3.Vec{X: 1, Y: 1, Z: 1}) {
			t.Errorf("%s scale = %v, want unit", solid.Name, p.Scale)
		}
	}
}

func TestUpdateScenarioHalfDelta(t *testing.T) {
	s := mustState(t, scenarioConfig())
	u, err := s.Update(3)
	if err != nil {
		t.Fatalf("Update(3) error = %v", err)
	}
	if u.Translate != 0.75 {
		t.Errorf("translate amount = %v, want 0.75", u.Translate)
	}
	if u.Scale != 2 {
		t.Errorf("scale amount = %v, want 2", u.Scale)
	}

	wantFace := []Transform{
		{Translation: v3.Vec{X: 0.75}, Scale: v3.Vec{X: 2, Y: 1, Z: 1}},
		{Translation: v3.Vec{Y: 0.75}, Scale: v3.Vec{X: 1, Y: 2, Z: 1}},
		{Translation: v3.Vec{Z: 0.75}, Scale: v3.Vec{X: 1, Y: 1, Z: 2}},
	}
	wantEdge := []Transform{
		{Translation: v3.Vec{Y: 0.75, Z: 0.75}, Scale: v3.Vec{X: 1, Y: 2, Z: 2}},
		{Translation: v3.Vec{X: 0.75, Z: 0.75}, Scale: v3.Vec{X: 2, Y: 1, Z: 2}},
		{Translation: v3.Vec{X: 0.75, Y: 0.75}, Scale: v3.Vec{X: 2, Y: 2, Z: 1}},
	}
	for i := range Axes {
		if u.Faces[i] != wantFace[i] {
			t.Errorf("faces[%d] = %+v, want %+v", i, u.Faces[i], wantFace[i])
		}
		if u.Edges[i] != wantEdge[i] {
			t.Errorf("edges[%d] = %+v, want %+v", i, u.Edges[i], wantEdge[i])
		}
	}
	wantPoint := Transform{Translation: v3.Vec{X: 0.75, Y: 0.75, Z: 0.75}, Scale: v3.Vec{X: 2, Y: 2, Z: 2}}
	if u.Point != wantPoint {
		t.Errorf("point = %+v, want %+v", u.Point, wantPoint)
	}
	if s.CurrentDx() != 3 {
		t.Errorf("CurrentDx() = %v, want 3", s.CurrentDx())
	}
}

func TestUpdatePolicies(t *testing.T) {
	tests := []struct {
		name      string
		translate TranslatePolicy
		scale     ScalePolicy
		wantT     float64
		wantS     float64
	}{
		{"half ratio", HalfDelta, Ratio, 0.75, 2},
		{"full ratio", FullDelta, Ratio, 1.5, 2},
		{"half absolute", HalfDelta, Absolute, 0.75, 3},
		{"full absolute", FullDelta, Absolute, 1.5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := scenarioConfig()
			cfg.Translate = tt.translate
			cfg.Scale = tt.scale
			s := mustState(t, cfg)
			u, err := s.Update(3)
			if err != nil {
				t.Fatalf("Update(3) error = %v", err)
			}
			if u.Translate != tt.wantT || u.Scale != tt.wantS {
				t.Errorf("translate/scale = %v/%v, want %v/%v", u.Translate, u.Scale, tt.wantT, tt.wantS)
			}
			if u.Point.Scale.X != tt.wantS {
				t.Errorf("point scale = %v, want %v", u.Point.Scale, tt.wantS)
			}
		})
	}
}

func TestUpdateScaleMonotonic(t *testing.T) {
	cfg := scenarioConfig()
	prev := math.Inf(-1)
	for dx := cfg.MinDx; dx <= cfg.MaxDx; dx += 0.125 {
		s := mustState(t, cfg)
		u, err := s.Update(dx)
		if err != nil {
			t.Fatalf("Update(%v) error = %v", dx, err)
		}
		if !(u.Scale > prev) {
			t.Fatalf("scale at dx=%v is %v, not above %v", dx, u.Scale, prev)
		}
		prev = u.Scale
	}
}

func TestUpdateAxisIsolation(t *testing.T) {
	s := mustState(t, scenarioConfig())
	for _, dx := range []float64{0, 0.7, 2.9, 1.1} {
		u, err := s.Update(dx)
		if err != nil {
			t.Fatalf("Update(%v) error = %v", dx, err)
		}
		for i, a := range Axes {
			on := a.Unit()
			off := v3.Vec{X: 1, Y: 1, Z: 1}.Sub(on)

			f := u.Faces[i]
			if f.Translation.Mul(off) != (v3.Vec{}) {
				t.Errorf("dx=%v face-%v translation %v leaves its axis", dx, a, f.Translation)
			}
			if f.Scale.Mul(off) != off {
				t.Errorf("dx=%v face-%v scale %v leaves its axis", dx, a, f.Scale)
			}

			e := u.Edges[i]
			if e.Translation.Mul(on) != (v3.Vec{}) {
				t.Errorf("dx=%v edge-%v translation %v touches its axis", dx, a, e.Translation)
			}
			if e.Scale.Mul(on) != on {
				t.Errorf("dx=%v edge-%v scale %v touches its axis", dx, a, e.Scale)
			}
		}
	}
}

func TestUpdateTranslationSymmetry(t *testing.T) {
	s := mustState(t, scenarioConfig())
	u, err := s.Update(2.5)
	if err != nil {
		t.Fatalf("Update error = %v", err)
	}
	// Same amount on 1, 2 and 3 axes respectively.
	sum := func(v v3.Vec) float64 { return v.X + v.Y + v.Z }
	for i := range Axes {
		if !near(sum(u.Faces[i].Translation), u.Translate) {
			t.Errorf("faces[%d] translation %v", i, u.Faces[i].Translation)
		}
		if !near(sum(u.Edges[i].Translation), 2*u.Translate) {
			t.Errorf("edges[%d] translation %v", i, u.Edges[i].Translation)
		}
	}
	if !near(sum(u.Point.Translation), 3*u.Translate) {
		t.Errorf("point translation %v", u.Point.Translation)
	}
	for _, tr := range allTransforms(u) {
		for _, c := range []float64{tr.Translation.X, tr.Translation.Y, tr.Translation.Z} {
			if c != 0 && c != u.Translate {
				t.Errorf("translation component %v, want 0 or %v", c, u.Translate)
			}
		}
	}
}

func TestUpdateBoundaryRejection(t *testing.T) {
	cfg := scenarioConfig()
	tests := []struct {
		name string
		dx   float64
	}{
		{"below min", cfg.MinDx - 0.001},
		{"above max", cfg.MaxDx + 0.001},
		{"negative", -1},
		{"nan", math.NaN()},
		{"+inf", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustState(t, cfg)
			if _, err := s.Update(2); err != nil {
				t.Fatalf("Update(2) error = %v", err)
			}
			_, err := s.Update(tt.dx)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("Update(%v) error = %v, want ErrInvalidParameter", tt.dx, err)
			}
			var pe *ParameterError
			if !errors.As(err, &pe) {
				t.Fatalf("error %v is not a *ParameterError", err)
			}
			if s.CurrentDx() != 2 {
				t.Errorf("CurrentDx() = %v after rejection, want 2", s.CurrentDx())
			}
			if s.Phase() != Idle {
				t.Errorf("Phase() = %v, want idle", s.Phase())
			}
		})
	}
}

func TestUpdateClampPolicy(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Bounds = Clamp
	s := mustState(t, cfg)

	u, err := s.Update(10)
	if err != nil {
		t.Fatalf("Update(10) error = %v", err)
	}
	if u.Dx != cfg.MaxDx || s.CurrentDx() != cfg.MaxDx {
		t.Errorf("clamped dx = %v / %v, want %v", u.Dx, s.CurrentDx(), cfg.MaxDx)
	}
	if _, err := s.Update(-4); err != nil {
		t.Fatalf("Update(-4) error = %v", err)
	}
	if s.CurrentDx() != cfg.MinDx {
		t.Errorf("CurrentDx() = %v, want %v", s.CurrentDx(), cfg.MinDx)
	}
	if _, err := s.Update(math.NaN()); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Update(NaN) error = %v, want ErrInvalidParameter even when clamping", err)
	}
}

func TestUpdateListeners(t *testing.T) {
	s := mustState(t, scenarioConfig())

	var got []float64
	var reentrant error
	s.Subscribe(func(u Update) {
		got = append(got, u.Dx)
		if s.Phase() != Applying {
			t.Errorf("listener saw phase %v, want applying", s.Phase())
		}
		_, reentrant = s.Update(1)
	})

	if _, err := s.Update(2); err != nil {
		t.Fatalf("Update(2) error = %v", err)
	}
	if _, err := s.Update(0.5); err != nil {
		t.Fatalf("Update(0.5) error = %v", err)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 0.5 {
		t.Errorf("listener got %v, want [2 0.5]", got)
	}
	if !errors.Is(reentrant, ErrBusy) {
		t.Errorf("re-entrant Update error = %v, want ErrBusy", reentrant)
	}
	if s.Phase() != Idle {
		t.Errorf("Phase() = %v after update, want idle", s.Phase())
	}
}

func TestUpdateForBox(t *testing.T) {
	s := mustState(t, scenarioConfig())
	u, err := s.Update(0.2)
	if err != nil {
		t.Fatalf("Update error = %v", err)
	}
	if tr := u.For(s.Layout().Box); !tr.IsIdentity() {
		t.Errorf("box transform = %+v, want identity", tr)
	}
	if tr := u.For(s.Layout().Edges[2]); tr != u.Edges[2] {
		t.Errorf("For(edge-z) = %+v, want %+v", tr, u.Edges[2])
	}
}

func TestUpdateForWithoutAxis(t *testing.T) {
	u := Compute(scenarioConfig(), 1.5, 2)
	for _, s := range []Solid{
		{Name: "loose-face", Kind: KindFace},
		{Name: "loose-edge", Kind: KindEdge},
		{Name: "bad-axis", Kind: KindFace, Axis: Axis(7)},
	} {
		if tr := u.For(s); !tr.IsIdentity() {
			t.Errorf("For(%s) = %+v, want identity", s.Name, tr)
		}
	}
}

func TestReset(t *testing.T) {
	s := mustState(t, scenarioConfig())
	if _, err := s.Update(0.4); err != nil {
		t.Fatal(err)
	}
	u, err := s.Reset()
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if s.CurrentDx() != 1.5 || u.Scale != 1 {
		t.Errorf("after Reset dx=%v scale=%v", s.CurrentDx(), u.Scale)
	}
}
