package main

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/cubed/pkg/decomp"
)

// ---------------------------------------------------------------------------
// 1. Invalid configuration: NewApp refuses to start.
// ---------------------------------------------------------------------------

func TestNewAppInvalidConfig(t *testing.T) {
	cfg := decomp.DefaultConfig()
	cfg.BaseUnit = 0
	if _, err := NewApp(cfg); !errors.Is(err, decomp.ErrInvalidConfiguration) {
		t.Errorf("NewApp() error = %v, want ErrInvalidConfiguration", err)
	}
}

// ---------------------------------------------------------------------------
// 2. Out-of-range slider values are reported, not applied.
// ---------------------------------------------------------------------------

func TestSetDxRejected(t *testing.T) {
	app := newTestApp(t)
	for _, dx := range []float64{-0.5, 3.0001, 100} {
		res := app.SetDx(dx)
		if res.Update != nil {
			t.Errorf("SetDx(%v) applied an update", dx)
		}
		if !strings.Contains(res.Error, "outside") {
			t.Errorf("SetDx(%v) error = %q", dx, res.Error)
		}
	}
	if got := app.Layout().Dx; got != 1.5 {
		t.Errorf("dx = %v after rejected inputs, want 1.5", got)
	}
}

// ---------------------------------------------------------------------------
// 3. Reset returns to the initial dx with a ratio of 1.
// ---------------------------------------------------------------------------

func TestReset(t *testing.T) {
	app := newTestApp(t)
	app.SetDx(0.3)
	res := app.Reset()
	if res.Error != "" {
		t.Fatal(res.Error)
	}
	if res.Update.Dx != 1.5 || res.Update.Scale != 1 {
		t.Errorf("reset update = %+v", res.Update)
	}
	for name, p := range app.Layout().Poses {
		if p.Scale != (decomp.Identity.Scale) {
			t.Errorf("%s scale = %v after reset", name, p.Scale)
		}
	}
}

// ---------------------------------------------------------------------------
// 4. dx = 0: only the box has volume, so only the box is meshed.
// ---------------------------------------------------------------------------

func TestMeshesAtZero(t *testing.T) {
	app := newTestApp(t)
	if res := app.SetDx(0); res.Error != "" {
		t.Fatal(res.Error)
	}
	result := app.Meshes()
	if len(result.Meshes) != 1 || result.Meshes[0].Name != "box" {
		names := []string{}
		for _, m := range result.Meshes {
			names = append(names, m.Name)
		}
		t.Errorf("meshes at dx=0 = %v, want [box]", names)
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 5. Rapid slider input from many goroutines: no races, no lost state.
// ---------------------------------------------------------------------------

func TestConcurrentSetDx(t *testing.T) {
	app := newTestApp(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dx := float64(i%31) / 10
			if res := app.SetDx(dx); res.Error != "" {
				t.Errorf("SetDx(%v): %s", dx, res.Error)
			}
			_ = app.Layout()
		}(i)
	}
	wg.Wait()

	l := app.Layout()
	if l.Dx < 0 || l.Dx > 3 {
		t.Errorf("dx = %v out of range", l.Dx)
	}
}

// ---------------------------------------------------------------------------
// 6. Script errors carry a message and leave no frames.
// ---------------------------------------------------------------------------

func TestEvaluateScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"out of range", "(slide 4)", "outside"},
		{"bad config", "(session :base-unit -1)", "base_unit"},
		{"unknown keyword", "(session :size 3)", "size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			result := app.Evaluate(tt.source)
			if len(result.Errors) == 0 {
				t.Fatal("expected eval errors")
			}
			if len(result.Frames) != 0 {
				t.Errorf("got %d frames on error", len(result.Frames))
			}
			if !strings.Contains(result.Errors[0].Message, tt.want) {
				t.Errorf("error %q does not mention %q", result.Errors[0].Message, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 7. A script with its own config replaces the live session's config.
// ---------------------------------------------------------------------------

func TestEvaluateAdoptsScriptConfig(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(session :base-unit 4 :initial-dx 1 :translate :full) (slide 2)`)
	if len(result.Errors) > 0 {
		t.Fatalf("eval errors: %v", result.Errors)
	}
	l := app.Layout()
	if l.Config.BaseUnit != 4 || l.Config.Translate != decomp.FullDelta {
		t.Errorf("config = %+v", l.Config)
	}
	// Subsequent slider input goes to the adopted session.
	res := app.SetDx(3)
	if res.Error != "" || res.Update.PrevDx != 2 || res.Update.Translate != 1 {
		t.Errorf("SetDx after script = %+v", res)
	}
}

// ---------------------------------------------------------------------------
// 8. Comments only: zero frames, zero errors.
// ---------------------------------------------------------------------------

func TestEvaluateCommentsOnly(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("; just a comment\n; another one\n")
	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors, got %v", result.Errors)
	}
	if len(result.Frames) != 0 {
		t.Errorf("expected 0 frames, got %d", len(result.Frames))
	}
}

// ---------------------------------------------------------------------------
// Switching arrangement keeps the slider where it was.
// ---------------------------------------------------------------------------

func TestArrange(t *testing.T) {
	app := newTestApp(t)
	if res := app.SetDx(2.5); res.Error != "" {
		t.Fatalf("SetDx error: %s", res.Error)
	}

	data, err := app.Arrange("pieces")
	if err != nil {
		t.Fatalf("Arrange(pieces) error = %v", err)
	}
	if data.Config.Arrangement != decomp.Pieces || data.Dx != 2.5 {
		t.Errorf("arrangement/dx = %v/%v, want pieces/2.5", data.Config.Arrangement, data.Dx)
	}
	if got := data.Poses["edge-y"].Position.X; got != 27 {
		t.Errorf("edge-y at x=%v, want 27", got)
	}
	if !data.Check.OK() {
		t.Errorf("check errors: %v", data.Check.Errors)
	}

	res := app.SetDx(3)
	if res.Error != "" || res.Update.Translate != 0 {
		t.Errorf("SetDx after arranging = %+v", res)
	}

	if _, err := app.Arrange("exploded"); !errors.Is(err, decomp.ErrInvalidConfiguration) {
		t.Errorf("Arrange(exploded) error = %v, want ErrInvalidConfiguration", err)
	}
	if app.Layout().Config.Arrangement != decomp.Pieces {
		t.Error("failed Arrange replaced the session")
	}

	back, err := app.Arrange("assembled")
	if err != nil {
		t.Fatal(err)
	}
	if got := back.Poses["face-x"].Position.X; got != 6.5 {
		t.Errorf("face-x at x=%v after reassembling at dx=3, want 6.5", got)
	}
}
