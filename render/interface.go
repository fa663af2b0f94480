package render

import (
	"fmt"
	"strings"
)

// Capability flags what a backend owns
type Capability uint8

const (
	// CapManualDrag: the engine drag state machine owns dragging, commit on release
	CapManualDrag Capability = 1 << iota
	// CapPhysicsDrag: the physics backend owns dragging, commit every frame
	CapPhysicsDrag
)

// Has reports whether all bits of c2 are set
func (c Capability) Has(c2 Capability) bool {
	return c&c2 == c2
}

func (c Capability) String() string {
	var parts []string
	if c.Has(CapManualDrag) {
		parts = append(parts, "manual-drag")
	}
	if c.Has(CapPhysicsDrag) {
		parts = append(parts, "physics-drag")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Backend names a renderer configuration
type Backend string

const (
	BackendDraw    Backend = "draw"
	BackendPhysics Backend = "physics"
)

// ParseBackend validates a configured backend name
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendDraw, BackendPhysics:
		return b, nil
	default:
		return "", fmt.Errorf("unknown render backend %q (want draw or physics)", s)
	}
}

// Capabilities returns the drag ownership of the backend
func (b Backend) Capabilities() Capability {
	if b == BackendPhysics {
		return CapPhysicsDrag
	}
	return CapManualDrag
}

// Renderer draws one composed scene per frame
type Renderer interface {
	Capabilities() Capability
	Draw(scene Scene) error
}

// Layer is one pass of the terminal pipeline
type Layer interface {
	Render(ctx Context, scene Scene, buf *Buffer)
}

// VisibilityToggle is optionally implemented for runtime enable/disable
type VisibilityToggle interface {
	IsVisible() bool
}
