package component

import (
	"math"
	"slices"
)

// Snapshot is the subset of actor fields the program may change and reconciliation compares
type Snapshot struct {
	X, Y       float64
	Size       float64
	Color      string
	Visible    bool
	WaitUntil  int64
	QueueIndex int
	State      ActionState
	Queue      []Action
}

// SnapshotOf captures the reconciled fields of a
func SnapshotOf(a Actor) Snapshot {
	return Snapshot{
		X:          a.X,
		Y:          a.Y,
		Size:       a.Size,
		Color:      a.Color,
		Visible:    a.Visible,
		WaitUntil:  a.WaitUntil,
		QueueIndex: a.QueueIndex,
		State:      a.State,
		Queue:      a.Clone().Queue,
	}
}

// Diff returns a patch holding every field that differs between before and after
// Untouched fields never appear; a move is rounded to the nearest canvas unit and
// dropped if it rounds back onto the original position
func Diff(before Snapshot, after Actor) Patch {
	var p Patch

	if after.X != before.X || after.Y != before.Y {
		x, y := Round(after.X), Round(after.Y)
		if x != before.X || y != before.Y {
			p.X, p.Y = &x, &y
		}
	}
	if after.Size != before.Size {
		size := after.Size
		p.Size = &size
	}
	if after.Color != before.Color {
		color := after.Color
		p.Color = &color
	}
	if after.Visible != before.Visible {
		visible := after.Visible
		p.Visible = &visible
	}
	if after.WaitUntil != before.WaitUntil {
		wait := after.WaitUntil
		p.WaitUntil = &wait
	}
	if after.QueueIndex != before.QueueIndex {
		idx := after.QueueIndex
		p.QueueIndex = &idx
	}
	if after.State != before.State {
		state := after.State
		p.State = &state
	}
	if !equalQueues(before.Queue, after.Queue) {
		// Non-nil even when empty so the patch clears the queue
		p.Queue = append([]Action{}, after.Clone().Queue...)
	}
	return p
}

// Round rounds a coordinate to the nearest integer canvas unit, halves away from zero
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v)
}

// equalQueues treats nil and empty queues and argument lists as equal
func equalQueues(a, b []Action) bool {
	return slices.EqualFunc(a, b, func(x, y Action) bool {
		return x.Type == y.Type && slices.Equal(x.Args, y.Args)
	})
}
