// Package server exposes an engine over HTTP for inspection, remote control and metrics
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lixenwraith/spritestage/component"
	"github.com/lixenwraith/spritestage/engine"
	"github.com/lixenwraith/spritestage/render"
	"github.com/lixenwraith/spritestage/status"
)

// maxProgramBytes bounds PUT /program bodies
const maxProgramBytes = 1 << 20

// Server routes HTTP requests to one engine
type Server struct {
	engine  *engine.Engine
	logger  *slog.Logger
	metrics *prometheus.Registry
}

// StateResponse is the body of GET /state
type StateResponse struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	Frame    int64  `json:"frame"`
	Selected string `json:"selected,omitempty"`
	Backend  string `json:"backend"`
	Actors   int    `json:"actors"`
}

// NewHandler builds the router for e
func NewHandler(e *engine.Engine, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine:  e,
		logger:  logger,
		metrics: prometheus.NewRegistry(),
	}
	s.metrics.MustRegister(
		status.NewCollector("spritestage", e.Status(), prometheus.Labels{"engine_id": e.ID()}),
		collectors.NewGoCollector(),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))

	r.Get("/state", s.getState)
	r.Route("/actors", func(r chi.Router) {
		r.Get("/", s.listActors)
		r.Get("/{id}", s.getActor)
		r.Patch("/{id}", s.patchActor)
	})
	r.Get("/diagnostics", s.getDiagnostics)
	r.Get("/program", s.getProgram)
	r.Put("/program", s.putProgram)
	r.Put("/backend", s.putBackend)
	r.Post("/control/{action}", s.control)
	r.Get("/events", s.events)
	return r
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	backend := render.BackendDraw
	if s.engine.Capabilities().Has(render.CapPhysicsDrag) {
		backend = render.BackendPhysics
	}
	writeJSON(w, http.StatusOK, StateResponse{
		ID:       s.engine.ID(),
		State:    s.engine.State().String(),
		Frame:    s.engine.CurrentFrame(),
		Selected: s.engine.Selected(),
		Backend:  string(backend),
		Actors:   s.engine.Store().Len(),
	})
}

func (s *Server) listActors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Store().List())
}

func (s *Server) getActor(w http.ResponseWriter, r *http.Request) {
	a, ok := s.engine.Store().Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "actor not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// patchActor applies a UI-sourced partial update
func (s *Server) patchActor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p component.Patch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("patch actor: invalid body", "actor", id, "error", err)
		return
	}
	if err := p.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.engine.Store().Update(id, p, engine.SourceUI); err != nil {
		if errors.Is(err, engine.ErrUnknownActor) {
			http.Error(w, "actor not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	a, _ := s.engine.Store().Get(id)
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) getDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Diagnostics())
}

func (s *Server) getProgram(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = io.WriteString(w, s.engine.Program())
}

// putProgram hot-swaps the program text; init does not re-run
func (s *Server) putProgram(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProgramBytes))
	if err != nil {
		http.Error(w, "program too large", http.StatusRequestEntityTooLarge)
		return
	}
	s.engine.SetProgram(string(body))
	s.logger.Info("program replaced over http", "bytes", len(body))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putBackend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Backend string `json:"backend"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	b, err := render.ParseBackend(body.Backend)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.engine.SetBackend(b.Capabilities())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) control(w http.ResponseWriter, r *http.Request) {
	switch action := chi.URLParam(r, "action"); action {
	case "start":
		s.engine.Start()
	case "pause":
		s.engine.Pause()
	case "resume":
		s.engine.Resume()
	case "toggle":
		s.engine.Toggle()
	case "reset":
		s.engine.Reset()
	case "recreate":
		s.engine.Recreate()
	default:
		http.Error(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
		return
	}
	s.getState(w, r)
}

// events streams actor updates as server-sent events
// Slow clients drop events rather than stall the frame loop
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	ch := make(chan engine.UpdateEvent, 64)
	cancel := s.engine.Store().Subscribe(func(ev engine.UpdateEvent) {
		select {
		case ch <- ev:
		default:
		}
	})
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			data, err := json.Marshal(updateMessage{
				ID:     ev.ID,
				Source: ev.Source.String(),
				Patch:  ev.Patch,
			})
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: update\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

type updateMessage struct {
	ID     string          `json:"id"`
	Source string          `json:"source"`
	Patch  component.Patch `json:"patch"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
