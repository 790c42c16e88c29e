package decomp

import (
	"fmt"
	"math"
)

// Phase is the Update Rule's state.
type Phase int

const (
	Idle     Phase = iota // no change pending
	Applying              // recomputing and notifying listeners
)

func (p Phase) String() string {
	if p == Applying {
		return "applying"
	}
	return "idle"
}

// Listener receives every applied update. Listeners run while the state is
// Applying; calling Update from a listener fails with ErrBusy.
type Listener func(Update)

// State is the mutable per-session decomposition state. It is not safe for
// concurrent use: a session has a single writer (the input handler), and
// callers with concurrent input sources must serialize them.
type State struct {
	cfg       Config
	layout    *Layout
	currentDx float64
	phase     Phase
	listeners []Listener
}

// NewState validates cfg, generates its layout and starts the session at
// dx = cfg.InitialDx.
func NewState(cfg Config) (*State, error) {
	l, err := Generate(cfg)
	if err != nil {
		return nil, err
	}
	return &State{cfg: cfg, layout: l, currentDx: cfg.InitialDx}, nil
}

// Config returns the session configuration.
func (s *State) Config() Config { return s.cfg }

// Layout returns the solids generated at session start.
func (s *State) Layout() *Layout { return s.layout }

// CurrentDx returns the last applied dx.
func (s *State) CurrentDx() float64 { return s.currentDx }

// Phase returns Idle or Applying.
func (s *State) Phase() Phase { return s.phase }

// Subscribe registers fn to be called after every successful update.
func (s *State) Subscribe(fn Listener) {
	s.listeners = append(s.listeners, fn)
}

// Resolve checks dx against the configured range and bounds policy and
// returns the value Update would apply.
func (s *State) Resolve(dx float64) (float64, error) {
	if math.IsNaN(dx) || math.IsInf(dx, 0) {
		return 0, &ParameterError{Value: dx, Min: s.cfg.MinDx, Max: s.cfg.MaxDx}
	}
	if dx >= s.cfg.MinDx && dx <= s.cfg.MaxDx {
		return dx, nil
	}
	if s.cfg.Bounds == Clamp {
		return math.Min(math.Max(dx, s.cfg.MinDx), s.cfg.MaxDx), nil
	}
	return 0, &ParameterError{Value: dx, Min: s.cfg.MinDx, Max: s.cfg.MaxDx}
}

// Update applies newDx. It returns the per-solid transforms relative to the
// previous dx and records newDx as current. A rejected value leaves the
// state unchanged.
func (s *State) Update(newDx float64) (Update, error) {
	if s.phase == Applying {
		return Update{}, ErrBusy
	}
	dx, err := s.Resolve(newDx)
	if err != nil {
		return Update{}, fmt.Errorf("update: %w", err)
	}

	s.phase = Applying
	defer func() { s.phase = Idle }()

	u := Compute(s.cfg, s.currentDx, dx)
	s.currentDx = dx
	for _, fn := range s.listeners {
		fn(u)
	}
	return u, nil
}

// Reset returns the session to dx = InitialDx.
func (s *State) Reset() (Update, error) {
	return s.Update(s.cfg.InitialDx)
}

// Pose returns where solid sits at the current dx.
func (s *State) Pose(solid Solid) Pose {
	return PoseAt(s.cfg, solid, s.currentDx)
}

// Poses returns the current pose of every solid, keyed by name.
func (s *State) Poses() map[string]Pose {
	out := make(map[string]Pose, 8)
	for _, solid := range s.layout.Solids() {
		out[solid.Name] = s.Pose(solid)
	}
	return out
}
