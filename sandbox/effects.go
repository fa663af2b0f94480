package sandbox

import (
	"time"

	"github.com/lixenwraith/spritestage/event"
)

// DrawOp is a drawing primitive
type DrawOp uint8

const (
	OpClear DrawOp = iota
	OpRect
	OpCircle
	OpLine
	OpText
)

// String returns the primitive name as exposed to programs
func (o DrawOp) String() string {
	switch o {
	case OpClear:
		return "clear"
	case OpRect:
		return "rect"
	case OpCircle:
		return "circle"
	case OpLine:
		return "line"
	case OpText:
		return "text"
	default:
		return "unknown"
	}
}

// DrawCommand is one recorded drawing call, consumed by the renderer in the same frame
type DrawCommand struct {
	Op     DrawOp
	X, Y   float64
	W, H   float64 // rect
	R      float64 // circle
	X2, Y2 float64 // line end
	Color  string
	Text   string
}

// Tone is a requested beep
type Tone struct {
	Freq     float64
	Duration time.Duration
}

// Message is a log line emitted by the program
type Message struct {
	Severity event.Severity
	Text     string
}

// Effects are the side effects of one phase invocation
type Effects struct {
	Draws []DrawCommand
	Tones []Tone
	Logs  []Message
}

// Empty reports whether the invocation produced no side effects
func (e Effects) Empty() bool {
	return len(e.Draws) == 0 && len(e.Tones) == 0 && len(e.Logs) == 0
}

// discardOutput drops everything but logs, used when an invocation fails
func (e Effects) discardOutput() Effects {
	return Effects{Logs: e.Logs}
}
