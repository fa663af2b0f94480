package component

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Defaults(t *testing.T) {
	a := Normalize(Actor{ID: "cat", X: math.NaN(), Y: math.Inf(1), QueueIndex: -2, WaitUntil: -5, State: "flying"})
	assert.Equal(t, 30.0, a.Size)
	assert.Equal(t, "#4c97ff", a.Color)
	assert.Zero(t, a.X)
	assert.Zero(t, a.Y)
	assert.Zero(t, a.QueueIndex)
	assert.Zero(t, a.WaitUntil)
	assert.Equal(t, ActionReady, a.State)
}

func TestClone_DoesNotShareQueue(t *testing.T) {
	a := Actor{Queue: []Action{{Type: "move", Args: []float64{1, 2}}}}
	c := a.Clone()
	c.Queue[0].Args[0] = 99
	c.Queue[0].Type = "turn"
	assert.Equal(t, 1.0, a.Queue[0].Args[0])
	assert.Equal(t, "move", a.Queue[0].Type)
}

func TestRecord_RoundTrip(t *testing.T) {
	hidden := false
	a := Record{ID: "dog", Visible: &hidden}.Actor()
	assert.Equal(t, "dog", a.Name, "name defaults to id")
	assert.False(t, a.Visible)

	b := Record{ID: "cat"}.Actor()
	assert.True(t, b.Visible, "omitted visible means shown")

	assert.Equal(t, a, RecordOf(a).Actor())
}

func TestDiff(t *testing.T) {
	before := Actor{X: 10, Y: 10, Size: 30, Color: "red", Visible: true, State: ActionReady}
	snap := SnapshotOf(before)

	assert.True(t, Diff(snap, before).Empty())

	sub := before
	sub.X = 10.4
	assert.True(t, Diff(snap, sub).Empty(), "sub-unit move rounds back")

	moved := before
	moved.X, moved.Y = 12.6, 9.4
	moved.State = ActionWaiting
	p := Diff(snap, moved)
	require.True(t, p.HasPosition())
	assert.Equal(t, 13.0, *p.X)
	assert.Equal(t, 9.0, *p.Y)
	require.NotNil(t, p.State)
	assert.Equal(t, ActionWaiting, *p.State)
	assert.Nil(t, p.Color)

	applied := p.Apply(before)
	assert.Equal(t, 13.0, applied.X)
	assert.Equal(t, ActionWaiting, applied.State)
	assert.Equal(t, "red", applied.Color)
}

func TestDiff_Queue(t *testing.T) {
	before := Actor{X: 10, Y: 10, Queue: []Action{{Type: "move", Args: []float64{1, 2}}}}
	snap := SnapshotOf(before)

	same := before.Clone()
	same.Queue[0].Args = []float64{1, 2}
	assert.True(t, Diff(snap, same).Empty())

	before.Queue[0].Args[0] = 50
	assert.True(t, Diff(snap, same).Empty(), "snapshot holds its own copy")

	edited := same.Clone()
	edited.Queue = append(edited.Queue, Action{Type: "say"})
	p := Diff(snap, edited)
	require.Len(t, p.Queue, 2)
	assert.Equal(t, "say", p.Queue[1].Type)
	assert.Nil(t, p.X)

	applied := p.Apply(Actor{})
	assert.Equal(t, edited.Queue, applied.Queue)
	applied.Queue[0].Args[0] = 99
	assert.Equal(t, 1.0, p.Queue[0].Args[0])

	cleared := same.Clone()
	cleared.Queue = nil
	p = Diff(snap, cleared)
	require.NotNil(t, p.Queue)
	assert.False(t, p.Empty())
	assert.Nil(t, p.Apply(same).Queue)

	empty := SnapshotOf(Actor{})
	assert.True(t, Diff(empty, Actor{Queue: []Action{}}).Empty(), "nil and empty queues match")
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.0, Round(2.5))
	assert.Equal(t, -3.0, Round(-2.5))
	assert.Equal(t, 0.0, Round(math.NaN()))
}
