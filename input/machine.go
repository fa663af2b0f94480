package input

import (
	"math"
	"sync"

	"github.com/lixenwraith/spritestage/component"
)

// Bounds is the clamp rectangle for dragged positions
type Bounds struct {
	Width  float64
	Height float64
	Inset  float64
}

// Clamp keeps a position Inset units inside the canvas edge
func (b Bounds) Clamp(x, y float64) (float64, float64) {
	return clamp(x, b.Inset, b.Width-b.Inset), clamp(y, b.Inset, b.Height-b.Inset)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HitTest returns the index of the topmost visible actor under the pointer
// actors is in paint order, back to front; positions must be the displayed ones
func HitTest(actors []component.Actor, px, py float64) (int, bool) {
	for i := len(actors) - 1; i >= 0; i-- {
		a := actors[i]
		if !a.Visible {
			continue
		}
		if math.Hypot(px-a.X, py-a.Y) <= a.Radius() {
			return i, true
		}
	}
	return -1, false
}

// PressOutcome reports whether a press opened a drag session
type PressOutcome struct {
	Hit bool
	ID  string
}

// MoveOutcome carries the live preview after a move
type MoveOutcome struct {
	Active bool
	ID     string
	X, Y   float64
}

// ReleaseOutcome is the result of closing a session
// X and Y are rounded and clamped when Kind is ReleaseCommit
type ReleaseOutcome struct {
	Kind ReleaseKind
	ID   string
	X, Y float64
}

// Machine is the pointer drag state machine
// Owned by one engine; safe for pointer events arriving off the frame goroutine
type Machine struct {
	mu        sync.Mutex
	state     DragState
	session   Session
	bounds    Bounds
	threshold float64
}

// NewMachine creates an idle drag machine
func NewMachine(bounds Bounds, threshold float64) *Machine {
	return &Machine{
		bounds:    bounds,
		threshold: threshold,
	}
}

// Press hit-tests displayed actors and opens a session on the topmost hit
// A press while a session is open replaces it
func (m *Machine) Press(actors []component.Actor, px, py float64) PressOutcome {
	idx, ok := HitTest(actors, px, py)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !ok {
		m.resetLocked()
		return PressOutcome{}
	}
	a := actors[idx]
	m.state = DragPressed
	m.session = Session{
		ID:       a.ID,
		OffsetX:  px - a.X,
		OffsetY:  py - a.Y,
		OriginX:  px,
		OriginY:  py,
		PreviewX: a.X,
		PreviewY: a.Y,
	}
	return PressOutcome{Hit: true, ID: a.ID}
}

// Move updates the preview of the open session; never touches actor data
func (m *Machine) Move(px, py float64) MoveOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == DragIdle {
		return MoveOutcome{}
	}
	s := &m.session
	s.PreviewX, s.PreviewY = m.bounds.Clamp(px-s.OffsetX, py-s.OffsetY)
	if !s.Exceeded && math.Hypot(px-s.OriginX, py-s.OriginY) > m.threshold {
		s.Exceeded = true
		m.state = DragDragging
	}
	return MoveOutcome{Active: true, ID: s.ID, X: s.PreviewX, Y: s.PreviewY}
}

// Release closes the session
// The release point is treated as a final move before deciding click vs commit
func (m *Machine) Release(px, py float64) ReleaseOutcome {
	m.Move(px, py)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == DragIdle {
		return ReleaseOutcome{}
	}
	s := m.session
	m.resetLocked()

	if !s.Exceeded {
		return ReleaseOutcome{Kind: ReleaseClick, ID: s.ID}
	}
	x, y := m.bounds.Clamp(component.Round(s.PreviewX), component.Round(s.PreviewY))
	return ReleaseOutcome{Kind: ReleaseCommit, ID: s.ID, X: x, Y: y}
}

// Cancel drops any open session without writing
func (m *Machine) Cancel() {
	m.mu.Lock()
	m.resetLocked()
	m.mu.Unlock()
}

// Preview returns the render override for the dragged actor
// Only a session past the threshold overrides rendering
func (m *Machine) Preview() (id string, x, y float64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != DragDragging {
		return "", 0, 0, false
	}
	return m.session.ID, m.session.PreviewX, m.session.PreviewY, true
}

// State returns the current machine state
func (m *Machine) State() DragState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the open session; zero when idle
func (m *Machine) Session() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.state != DragIdle
}

// Bounds returns the clamp rectangle
func (m *Machine) Bounds() Bounds {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bounds
}

// SetBounds changes the clamp rectangle for later moves
func (m *Machine) SetBounds(b Bounds) {
	m.mu.Lock()
	m.bounds = b
	m.mu.Unlock()
}

func (m *Machine) resetLocked() {
	m.state = DragIdle
	m.session = Session{}
}
