package component

import (
	"math"

	"github.com/lixenwraith/spritestage/parameter"
)

// ActionState is the progress of an actor through its action queue
type ActionState string

const (
	ActionReady   ActionState = "ready"
	ActionRunning ActionState = "running"
	ActionWaiting ActionState = "waiting"
)

// Valid reports whether s is one of the known states
func (s ActionState) Valid() bool {
	switch s {
	case ActionReady, ActionRunning, ActionWaiting:
		return true
	default:
		return false
	}
}

// Action is a queued action descriptor; only the program interprets it
type Action struct {
	Type string    `json:"type" yaml:"type" mapstructure:"type"`
	Args []float64 `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
}

// Actor is the canonical sprite record owned by the UI layer
type Actor struct {
	ID      string  `json:"id" yaml:"id" mapstructure:"id"`
	Name    string  `json:"name" yaml:"name" mapstructure:"name"`
	X       float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y       float64 `json:"y" yaml:"y" mapstructure:"y"`
	Size    float64 `json:"size" yaml:"size" mapstructure:"size"`
	Color   string  `json:"color" yaml:"color" mapstructure:"color"`
	Visible bool    `json:"visible" yaml:"visible" mapstructure:"visible"`

	// WaitUntil is the frame at which the queued action resumes, 0 when not waiting
	WaitUntil  int64       `json:"waitUntilFrame" yaml:"wait_until_frame" mapstructure:"waitUntilFrame"`
	Queue      []Action    `json:"actionQueue,omitempty" yaml:"action_queue,omitempty" mapstructure:"actionQueue"`
	QueueIndex int         `json:"currentActionIndex" yaml:"current_action_index" mapstructure:"currentActionIndex"`
	State      ActionState `json:"actionState" yaml:"action_state" mapstructure:"actionState"`
}

// Clone returns a deep copy; the queue is never shared between copies
func (a Actor) Clone() Actor {
	c := a
	if a.Queue != nil {
		c.Queue = make([]Action, len(a.Queue))
		for i, act := range a.Queue {
			c.Queue[i] = Action{Type: act.Type}
			if act.Args != nil {
				c.Queue[i].Args = append([]float64(nil), act.Args...)
			}
		}
	}
	return c
}

// Center returns the actor position, which is its center point
func (a Actor) Center() (float64, float64) {
	return a.X, a.Y
}

// Radius returns the hit radius
func (a Actor) Radius() float64 {
	return a.Size / 2
}

// Normalize fills defaults for fields an import may leave empty
func Normalize(a Actor) Actor {
	if a.Size <= 0 || math.IsNaN(a.Size) {
		a.Size = parameter.DefaultActorSize
	}
	if a.Color == "" {
		a.Color = parameter.DefaultActorColor
	}
	if math.IsNaN(a.X) || math.IsInf(a.X, 0) {
		a.X = 0
	}
	if math.IsNaN(a.Y) || math.IsInf(a.Y, 0) {
		a.Y = 0
	}
	if !a.State.Valid() {
		a.State = ActionReady
	}
	if a.QueueIndex < 0 {
		a.QueueIndex = 0
	}
	if a.WaitUntil < 0 {
		a.WaitUntil = 0
	}
	return a
}

// CloneAll deep-copies a slice of actors
func CloneAll(actors []Actor) []Actor {
	out := make([]Actor, len(actors))
	for i := range actors {
		out[i] = actors[i].Clone()
	}
	return out
}
