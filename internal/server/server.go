// Package server exposes decomposition sessions over HTTP.
//
// Each session owns one decomp.State. Requests against the same session are
// serialized by the session's mutex, so the state still sees a single
// writer even though handlers run concurrently.
//
//	POST   /sessions              create a session (optional JSON config body)
//	GET    /sessions/{id}         dx, layout, poses and volumes
//	GET    /sessions/{id}/layout  the solids handed to a renderer
//	PUT    /sessions/{id}/dx      apply {"dx": n}; returns the transforms
//	DELETE /sessions/{id}         drop the session
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/chazu/cubed/pkg/decomp"
)

// maxBody bounds request bodies; configs and dx inputs are tiny.
const maxBody = 1 << 16

type session struct {
	mu      sync.Mutex
	state   *decomp.State
	created time.Time
}

// Server holds the live sessions and routes requests to them.
type Server struct {
	base   decomp.Config
	logger *log.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// New returns a Server whose sessions start from base.
func New(base decomp.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		base:     base,
		logger:   logger,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.count()})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Get("/layout", s.getLayout)
			r.Put("/dx", s.putDx)
			r.Delete("/", s.deleteSession)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// lookup resolves the {id} URL parameter. It writes the error response and
// returns nil when the session does not exist.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (uuid.UUID, *session) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid session id: %w", err))
		return uuid.Nil, nil
	}
	s.mu.RLock()
	sess := s.sessions[id]
	s.mu.RUnlock()
	if sess == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("session %s not found", id))
		return id, nil
	}
	return id, sess
}

// SessionView is the JSON form of a session.
type SessionView struct {
	ID      uuid.UUID              `json:"id"`
	Dx      float64                `json:"dx"`
	Phase   string                 `json:"phase"`
	Config  decomp.Config          `json:"config"`
	Layout  *decomp.Layout         `json:"layout"`
	Poses   map[string]decomp.Pose `json:"poses"`
	Volumes decomp.Volumes         `json:"volumes"`
	Check   decomp.CheckResult     `json:"check"`
}

// UpdateView is the response to a dx input.
type UpdateView struct {
	decomp.Update
	Volumes decomp.Volumes `json:"volumes"`
}

func view(id uuid.UUID, st *decomp.State) SessionView {
	return SessionView{
		ID:      id,
		Dx:      st.CurrentDx(),
		Phase:   st.Phase().String(),
		Config:  st.Config(),
		Layout:  st.Layout(),
		Poses:   st.Poses(),
		Volumes: decomp.Measure(st.Config(), st.Layout(), st.CurrentDx()),
		Check:   decomp.Check(st.Config(), st.Layout(), st.CurrentDx()),
	}
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	cfg := s.base
	if err := decodeBody(r, &cfg); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, err := decomp.NewState(cfg)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = &session{state: st, created: time.Now()}
	s.mu.Unlock()

	s.logger.Info("session created", "id", id, "base_unit", cfg.BaseUnit, "initial_dx", cfg.InitialDx)
	w.Header().Set("Location", "/sessions/"+id.String())
	writeJSON(w, http.StatusCreated, view(id, st))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	v := view(id, sess.state)
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	_, sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	// The layout is immutable after construction.
	writeJSON(w, http.StatusOK, sess.state.Layout())
}

type dxRequest struct {
	Dx *float64 `json:"dx"`
}

func (s *Server) putDx(w http.ResponseWriter, r *http.Request) {
	id, sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	var req dxRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Dx == nil {
		writeError(w, http.StatusBadRequest, errors.New(`missing "dx"`))
		return
	}

	sess.mu.Lock()
	u, err := sess.state.Update(*req.Dx)
	var v UpdateView
	if err == nil {
		v = UpdateView{Update: u, Volumes: decomp.Measure(sess.state.Config(), sess.state.Layout(), u.Dx)}
	}
	sess.mu.Unlock()

	if err != nil {
		s.logger.Debug("dx rejected", "id", id, "dx", *req.Dx, "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, sess := s.lookup(w, r)
	if sess == nil {
		return
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.logger.Info("session deleted", "id", id, "age", time.Since(sess.created).Round(time.Second))
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, decomp.ErrInvalidParameter), errors.Is(err, decomp.ErrInvalidConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, decomp.ErrBusy):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
