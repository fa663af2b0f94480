package render

import (
	"github.com/lixenwraith/spritestage/component"
	"github.com/lixenwraith/spritestage/sandbox"
)

// PositionSource records which layer supplied a displayed position
type PositionSource uint8

const (
	FromStore PositionSource = iota
	FromOverlay
	FromPreview
)

func (s PositionSource) String() string {
	switch s {
	case FromStore:
		return "store"
	case FromOverlay:
		return "overlay"
	case FromPreview:
		return "preview"
	default:
		return "unknown"
	}
}

// SceneActor is a visible actor at its displayed position
type SceneActor struct {
	component.Actor
	Source   PositionSource
	Selected bool
}

// Tether is the physics backend's spring from the grabbed body to the pointer target
type Tether struct {
	FromX, FromY float64
	ToX, ToY     float64
}

// Scene is everything a renderer needs for one frame
type Scene struct {
	Width   float64
	Height  float64
	Frame   int64
	Running bool
	Paused  bool
	Actors  []SceneActor
	Draws   []sandbox.DrawCommand
	Tether  *Tether
	Status  string
}

// Preview is the live drag override for one actor
type Preview struct {
	ID     string
	X, Y   float64
	Active bool
}

// OverlayLookup returns the overlay position for an actor id
type OverlayLookup func(id string) (x, y float64, ok bool)

// ComposeInput is the state a scene is built from
type ComposeInput struct {
	Width, Height float64
	Frame         int64
	Running       bool
	Paused        bool
	Actors        []component.Actor // Store records in paint order
	Overlay       OverlayLookup     // Consulted only while running
	Preview       Preview
	Selected      string
	Draws         []sandbox.DrawCommand
	Tether        *Tether
	Status        string
}

// Compose builds a scene without touching any state
// Displayed position priority: drag preview, overlay while running, store
func Compose(in ComposeInput) Scene {
	sc := Scene{
		Width:   in.Width,
		Height:  in.Height,
		Frame:   in.Frame,
		Running: in.Running,
		Paused:  in.Paused,
		Actors:  make([]SceneActor, 0, len(in.Actors)),
		Draws:   append([]sandbox.DrawCommand(nil), in.Draws...),
		Tether:  in.Tether,
		Status:  in.Status,
	}
	for _, a := range in.Actors {
		if !a.Visible {
			continue
		}
		sa := SceneActor{Actor: a.Clone(), Source: FromStore, Selected: a.ID == in.Selected}
		switch {
		case in.Preview.Active && in.Preview.ID == a.ID:
			sa.X, sa.Y = in.Preview.X, in.Preview.Y
			sa.Source = FromPreview
		case in.Running && in.Overlay != nil:
			if x, y, ok := in.Overlay(a.ID); ok {
				sa.X, sa.Y = x, y
				sa.Source = FromOverlay
			}
		}
		sc.Actors = append(sc.Actors, sa)
	}
	return sc
}

// Find returns the scene actor with id
func (s Scene) Find(id string) (SceneActor, bool) {
	for _, a := range s.Actors {
		if a.ID == id {
			return a, true
		}
	}
	return SceneActor{}, false
}
