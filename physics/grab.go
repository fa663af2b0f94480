package physics

import (
	"math"
	"sync"
)

// Grab is the physics-owned drag: one grabbed body pulled toward the pointer by a
// critically damped spring, stepped once per frame
type Grab struct {
	mu sync.Mutex

	active  bool
	id      string
	body    Body
	targetX float64
	targetY float64
	offsetX float64 // Pointer minus body position at grab
	offsetY float64

	omega  float64 // Spring angular frequency
	settle float64 // Snap distance
	bounds Rect
}

// NewGrab creates an idle grab constrained to bounds
func NewGrab(omega, settle float64, bounds Rect) *Grab {
	return &Grab{omega: omega, settle: settle, bounds: bounds}
}

// Begin grabs body id at (x, y) with the pointer at (px, py)
func (g *Grab) Begin(id string, x, y, px, py float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = true
	g.id = id
	g.body = Body{X: x, Y: y}
	g.offsetX, g.offsetY = px-x, py-y
	g.targetX, g.targetY = x, y
}

// SetTarget moves the spring anchor to follow the pointer
func (g *Grab) SetTarget(px, py float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return
	}
	g.targetX = clampRange(px-g.offsetX, g.bounds.MinX, g.bounds.MaxX)
	g.targetY = clampRange(py-g.offsetY, g.bounds.MinY, g.bounds.MaxY)
}

// Step advances the spring by dt seconds and returns the body position
// ok is false when nothing is grabbed
func (g *Grab) Step(dt float64) (id string, x, y float64, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return "", 0, 0, false
	}

	b := &g.body
	dx, dy := g.targetX-b.X, g.targetY-b.Y
	if math.Hypot(dx, dy) <= g.settle && math.Hypot(b.VelX, b.VelY) <= g.settle {
		b.X, b.Y = g.targetX, g.targetY
		Stop(b)
		return g.id, b.X, b.Y, true
	}

	// a = w^2 (target - x) - 2w v
	w2 := g.omega * g.omega
	b.AccelX = w2*dx - 2*g.omega*b.VelX
	b.AccelY = w2*dy - 2*g.omega*b.VelY
	Integrate(b, dt)
	ClampBody(b, g.bounds)
	return g.id, b.X, b.Y, true
}

// End releases the body and returns its final position
func (g *Grab) End() (id string, x, y float64, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return "", 0, 0, false
	}
	id, x, y = g.id, g.body.X, g.body.Y
	g.active = false
	g.id = ""
	g.body = Body{}
	return id, x, y, true
}

// Cancel drops the grab without reporting a position
func (g *Grab) Cancel() {
	g.mu.Lock()
	g.active = false
	g.id = ""
	g.body = Body{}
	g.mu.Unlock()
}

// Active returns the grabbed id, if any
func (g *Grab) Active() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id, g.active
}

// Target returns the clamped spring anchor
func (g *Grab) Target() (x, y float64, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.targetX, g.targetY, g.active
}

// Position returns the current body position of the grabbed id
func (g *Grab) Position() (id string, x, y float64, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id, g.body.X, g.body.Y, g.active
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
