package engine

import (
	"sync"

	"github.com/lixenwraith/spritestage/component"
)

// Point is an overlay position
type Point struct {
	X, Y float64
}

// Overlay caches program-produced positions while running
// Entries exist only for actors touched since the last pause or reset; never persisted
type Overlay struct {
	mu      sync.RWMutex
	entries map[string]Point
}

// NewOverlay creates an empty overlay
func NewOverlay() *Overlay {
	return &Overlay{entries: make(map[string]Point)}
}

// Set records the position for id
func (o *Overlay) Set(id string, x, y float64) {
	o.mu.Lock()
	o.entries[id] = Point{X: x, Y: y}
	o.mu.Unlock()
}

// Get returns the overlay position for id
func (o *Overlay) Get(id string) (Point, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	p, ok := o.entries[id]
	return p, ok
}

// Delete drops the entry for id
func (o *Overlay) Delete(id string) {
	o.mu.Lock()
	delete(o.entries, id)
	o.mu.Unlock()
}

// Clear drops every entry
func (o *Overlay) Clear() {
	o.mu.Lock()
	clear(o.entries)
	o.mu.Unlock()
}

// Len returns the number of entries
func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.entries)
}

// Snapshot returns a copy of all entries
func (o *Overlay) Snapshot() map[string]Point {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]Point, len(o.entries))
	for id, p := range o.entries {
		out[id] = p
	}
	return out
}

// Seed returns actors with overlay positions taking priority over their own
func (o *Overlay) Seed(actors []component.Actor) []component.Actor {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := component.CloneAll(actors)
	for i := range out {
		if p, ok := o.entries[out[i].ID]; ok {
			out[i].X, out[i].Y = p.X, p.Y
		}
	}
	return out
}
