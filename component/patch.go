package component

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidPatch reports a patch field outside the actor's valid range
var ErrInvalidPatch = errors.New("invalid patch")

// Patch is a partial actor update; nil fields are left untouched by Apply
type Patch struct {
	X          *float64     `json:"x,omitempty"`
	Y          *float64     `json:"y,omitempty"`
	Size       *float64     `json:"size,omitempty"`
	Color      *string      `json:"color,omitempty"`
	Visible    *bool        `json:"visible,omitempty"`
	WaitUntil  *int64       `json:"waitUntilFrame,omitempty"`
	QueueIndex *int         `json:"currentActionIndex,omitempty"`
	State      *ActionState `json:"actionState,omitempty"`
	Name       *string      `json:"name,omitempty"`
	Queue      []Action     `json:"actionQueue,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p Patch) Empty() bool {
	return p.X == nil && p.Y == nil && p.Size == nil && p.Color == nil &&
		p.Visible == nil && p.WaitUntil == nil && p.QueueIndex == nil &&
		p.State == nil && p.Name == nil && p.Queue == nil
}

// Validate rejects values Normalize would replace: non-positive size, empty color,
// non-finite position, negative wait or queue index and unknown action state
func (p Patch) Validate() error {
	switch {
	case p.X != nil && !finite(*p.X), p.Y != nil && !finite(*p.Y):
		return fmt.Errorf("%w: position must be finite", ErrInvalidPatch)
	case p.Size != nil && !(*p.Size > 0 && finite(*p.Size)):
		return fmt.Errorf("%w: size must be positive", ErrInvalidPatch)
	case p.Color != nil && strings.TrimSpace(*p.Color) == "":
		return fmt.Errorf("%w: color must not be empty", ErrInvalidPatch)
	case p.WaitUntil != nil && *p.WaitUntil < 0:
		return fmt.Errorf("%w: waitUntilFrame must not be negative", ErrInvalidPatch)
	case p.QueueIndex != nil && *p.QueueIndex < 0:
		return fmt.Errorf("%w: currentActionIndex must not be negative", ErrInvalidPatch)
	case p.State != nil && !p.State.Valid():
		return fmt.Errorf("%w: unknown actionState %q", ErrInvalidPatch, *p.State)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// HasPosition reports whether the patch moves the actor
func (p Patch) HasPosition() bool {
	return p.X != nil || p.Y != nil
}

// Apply shallow-merges the patch into a copy of a
func (p Patch) Apply(a Actor) Actor {
	if p.X != nil {
		a.X = *p.X
	}
	if p.Y != nil {
		a.Y = *p.Y
	}
	if p.Size != nil {
		a.Size = *p.Size
	}
	if p.Color != nil {
		a.Color = *p.Color
	}
	if p.Visible != nil {
		a.Visible = *p.Visible
	}
	if p.WaitUntil != nil {
		a.WaitUntil = *p.WaitUntil
	}
	if p.QueueIndex != nil {
		a.QueueIndex = *p.QueueIndex
	}
	if p.State != nil {
		a.State = *p.State
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Queue != nil {
		a.Queue = Actor{Queue: p.Queue}.Clone().Queue
		if len(a.Queue) == 0 {
			a.Queue = nil
		}
	}
	return a
}

// PositionPatch builds a patch that only moves the actor
func PositionPatch(x, y float64) Patch {
	return Patch{X: &x, Y: &y}
}

// WaitPatch builds a patch that only sets the wait frame
func WaitPatch(frame int64) Patch {
	return Patch{WaitUntil: &frame}
}
