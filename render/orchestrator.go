package render

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

type layerEntry struct {
	layer    Layer
	priority LayerPriority
	index    int // registration order for stable sort
}

// Orchestrator coordinates the terminal render pipeline
type Orchestrator struct {
	mu       sync.Mutex
	screen   tcell.Screen
	buffer   *Buffer
	layers   []layerEntry
	regCount int
	ctx      Context
}

// NewOrchestrator creates an orchestrator drawing to screen
func NewOrchestrator(screen tcell.Screen) *Orchestrator {
	w, h := screen.Size()
	return &Orchestrator{
		screen: screen,
		buffer: NewBuffer(w, h),
		layers: make([]layerEntry, 0, 8),
	}
}

// Register adds a layer at the specified priority. Maintains sorted order via insertion sort
func (o *Orchestrator) Register(l Layer, priority LayerPriority) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry := layerEntry{
		layer:    l,
		priority: priority,
		index:    o.regCount,
	}
	o.regCount++

	pos := len(o.layers)
	for i, e := range o.layers {
		if priority < e.priority || (priority == e.priority && entry.index < e.index) {
			pos = i
			break
		}
	}

	o.layers = append(o.layers, layerEntry{})
	copy(o.layers[pos+1:], o.layers[pos:])
	o.layers[pos] = entry
}

// RenderFrame executes the pipeline: resize if needed, clear, render all, flush
func (o *Orchestrator) RenderFrame(scene Scene) {
	o.mu.Lock()
	defer o.mu.Unlock()

	w, h := o.screen.Size()
	if bw, bh := o.buffer.Size(); bw != w || bh != h {
		o.buffer.Resize(w, h)
	} else {
		o.buffer.Clear()
	}
	o.ctx = NewContext(scene.Width, scene.Height, w, h)

	for _, entry := range o.layers {
		if vt, ok := entry.layer.(VisibilityToggle); ok && !vt.IsVisible() {
			continue
		}
		entry.layer.Render(o.ctx, scene, o.buffer)
	}

	o.buffer.Flush(o.screen)
}

// Context returns the mapping used by the last frame
func (o *Orchestrator) Context() Context {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ctx
}

// Buffer exposes the compositor, for inspection in tests
func (o *Orchestrator) Buffer() *Buffer {
	return o.buffer
}
