package render

import (
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
)

// TerminalRenderer draws scenes to a tcell screen through the layer pipeline
type TerminalRenderer struct {
	orch    *Orchestrator
	backend atomic.Value // Backend
}

// NewTerminalRenderer creates a renderer for the given backend
// The tether layer only draws while a physics grab is active, so it is always registered
func NewTerminalRenderer(screen tcell.Screen, backend Backend) *TerminalRenderer {
	r := &TerminalRenderer{
		orch: NewOrchestrator(screen),
	}
	r.backend.Store(backend)
	r.orch.Register(programLayer{}, PriorityProgram)
	r.orch.Register(actorLayer{}, PriorityActors)
	r.orch.Register(tetherLayer{}, PriorityTether)
	r.orch.Register(statusLayer{}, PriorityStatus)
	return r
}

// Backend returns the current backend
func (r *TerminalRenderer) Backend() Backend {
	return r.backend.Load().(Backend)
}

// SetBackend switches drag ownership; the caller mirrors it into the engine
func (r *TerminalRenderer) SetBackend(b Backend) {
	r.backend.Store(b)
}

// Capabilities reports the backend's drag ownership
func (r *TerminalRenderer) Capabilities() Capability {
	return r.Backend().Capabilities()
}

// Draw renders one scene
func (r *TerminalRenderer) Draw(scene Scene) error {
	r.orch.RenderFrame(scene)
	return nil
}

// Context returns the canvas-to-cell mapping of the last frame, for pointer translation
func (r *TerminalRenderer) Context() Context {
	return r.orch.Context()
}

// Buffer exposes the compositor of the last frame
func (r *TerminalRenderer) Buffer() *Buffer {
	return r.orch.Buffer()
}
