package main

import (
	"context"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/cubed/pkg/decomp"
	"github.com/chazu/cubed/pkg/engine"
	"github.com/chazu/cubed/pkg/kernel"
	"github.com/chazu/cubed/pkg/kernel/sdfx"
	"github.com/chazu/cubed/pkg/tessellate"
)

// meshCells keeps interactive tessellation fast; boxes need little
// resolution.
const meshCells = 32

// updateEvent is emitted to the frontend after every applied update.
const updateEvent = "cubed:update"

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Bindings run on their own goroutines, so every access to the session goes
// through mu.
type App struct {
	ctx    context.Context
	logger *log.Logger
	engine *engine.Engine
	kernel kernel.Kernel

	mu    sync.Mutex
	state *decomp.State
}

// LayoutData is sent to the frontend once per session to build its scene.
type LayoutData struct {
	Config  decomp.Config          `json:"config"`
	Layout  *decomp.Layout         `json:"layout"`
	Dx      float64                `json:"dx"`
	Poses   map[string]decomp.Pose `json:"poses"`
	Volumes decomp.Volumes         `json:"volumes"`
	Check   decomp.CheckResult     `json:"check"`
}

// UpdateResult is returned by SetDx and Reset. On a rejected input Update
// is nil and Error says why.
type UpdateResult struct {
	Update  *decomp.Update `json:"update"`
	Volumes decomp.Volumes `json:"volumes"`
	Error   string         `json:"error,omitempty"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the result of running a session script.
type EvalResult struct {
	Frames []decomp.Update `json:"frames"`
	Layout *LayoutData     `json:"layout"`
	Errors []EvalErrorData `json:"errors"`
}

// MeshResult carries one mesh per non-degenerate solid at the current dx.
type MeshResult struct {
	Meshes []*kernel.Mesh `json:"meshes"`
	Errors []string       `json:"errors"`
}

// NewApp creates an App with a session built from cfg and the sdfx kernel.
func NewApp(cfg decomp.Config) (*App, error) {
	st, err := decomp.NewState(cfg)
	if err != nil {
		return nil, err
	}
	a := &App{
		logger: log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "app"}),
		engine: engine.NewEngine(cfg),
		kernel: sdfx.NewWithCells(meshCells),
	}
	a.adopt(st)
	return a, nil
}

// startup is called by Wails on app startup. The context is saved
// so updates can be pushed to the frontend as events.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// adopt makes st the live session and forwards its updates to the
// frontend. The caller holds mu or has exclusive access.
func (a *App) adopt(st *decomp.State) {
	st.Subscribe(func(u decomp.Update) {
		if a.ctx != nil {
			runtime.EventsEmit(a.ctx, updateEvent, u)
		}
	})
	a.state = st
}

func (a *App) layoutData() *LayoutData {
	st := a.state
	return &LayoutData{
		Config:  st.Config(),
		Layout:  st.Layout(),
		Dx:      st.CurrentDx(),
		Poses:   st.Poses(),
		Volumes: decomp.Measure(st.Config(), st.Layout(), st.CurrentDx()),
		Check:   decomp.Check(st.Config(), st.Layout(), st.CurrentDx()),
	}
}

// Layout returns the solids, their colors and their poses at the current dx.
func (a *App) Layout() LayoutData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.layoutData()
}

// Arrange rebuilds the session with the named arrangement ("assembled" or
// "pieces") and carries the current dx over.
func (a *App) Arrange(name string) (LayoutData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cfg := a.state.Config()
	if err := cfg.Arrangement.UnmarshalText([]byte(name)); err != nil {
		return LayoutData{}, err
	}
	st, err := decomp.NewState(cfg)
	if err != nil {
		return LayoutData{}, err
	}
	if dx := a.state.CurrentDx(); dx != cfg.InitialDx {
		if _, err := st.Update(dx); err != nil {
			return LayoutData{}, err
		}
	}
	a.adopt(st)
	a.logger.Debug("arranged", "arrangement", cfg.Arrangement, "dx", st.CurrentDx())
	return *a.layoutData(), nil
}

// SetDx applies a slider value. This is the primary binding called by the
// frontend slider.
func (a *App) SetDx(dx float64) UpdateResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.apply(a.state.Update(dx))
}

// Reset moves the slider back to the initial dx.
func (a *App) Reset() UpdateResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.apply(a.state.Reset())
}

func (a *App) apply(u decomp.Update, err error) UpdateResult {
	if err != nil {
		a.logger.Warn("dx rejected", "err", err)
		return UpdateResult{Error: err.Error()}
	}
	return UpdateResult{
		Update:  &u,
		Volumes: decomp.Measure(a.state.Config(), a.state.Layout(), u.Dx),
	}
}

// Meshes tessellates every solid at the current dx.
func (a *App) Meshes() MeshResult {
	a.mu.Lock()
	st := a.state
	dx := st.CurrentDx()
	a.mu.Unlock()

	result := MeshResult{Meshes: []*kernel.Mesh{}, Errors: []string{}}
	meshes, err := tessellate.Tessellate(st.Config(), st.Layout(), dx, a.kernel)
	if err != nil {
		a.logger.Error("tessellate", "dx", dx, "err", err)
		result.Errors = append(result.Errors, "tessellation failed: "+err.Error())
		return result
	}
	result.Meshes = append(result.Meshes, meshes...)
	return result
}

// Evaluate runs a session script. On success the script's session replaces
// the live one, so the frontend picks up where the script left off.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Frames: []decomp.Update{},
		Errors: []EvalErrorData{},
	}

	sess, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.logger.Error("evaluate", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	a.mu.Lock()
	a.adopt(sess.State)
	result.Layout = a.layoutData()
	a.mu.Unlock()

	result.Frames = append(result.Frames, sess.Frames...)
	a.logger.Debug("script applied", "frames", len(sess.Frames), "dx", sess.State.CurrentDx())
	return result
}
