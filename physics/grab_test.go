package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stage = Rect{MinX: 5, MinY: 5, MaxX: 475, MaxY: 355}

func TestGrab_ConvergesWithoutOvershoot(t *testing.T) {
	g := NewGrab(18, 0.25, stage)
	g.Begin("a", 100, 100, 100, 100)
	g.SetTarget(200, 100)

	prev := 100.0
	var x float64
	for i := 0; i < 120; i++ {
		_, x, _, _ = g.Step(1.0 / 60)
		assert.GreaterOrEqual(t, x, prev-1e-9, "critically damped spring must not swing back")
		assert.LessOrEqual(t, x, 200.0+1e-9)
		prev = x
	}
	assert.Equal(t, 200.0, x, "settled body snaps onto the target")
}

func TestGrab_TargetClamped(t *testing.T) {
	g := NewGrab(18, 0.25, stage)
	g.Begin("a", 100, 100, 110, 100)
	g.SetTarget(-50, 900)

	var x, y float64
	for i := 0; i < 300; i++ {
		_, x, y, _ = g.Step(1.0 / 60)
	}
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 355.0, y)
}

func TestGrab_EndAndIdle(t *testing.T) {
	g := NewGrab(18, 0.25, stage)
	_, _, _, ok := g.Step(1.0 / 60)
	assert.False(t, ok)

	g.Begin("a", 10, 20, 10, 20)
	id, active := g.Active()
	require.True(t, active)
	assert.Equal(t, "a", id)

	id, x, y, ok := g.End()
	require.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)

	_, active = g.Active()
	assert.False(t, active)
	_, _, _, ok = g.End()
	assert.False(t, ok)
}

func TestClampBody(t *testing.T) {
	b := Body{X: -1, Y: 400, VelX: -3, VelY: 2}
	assert.True(t, ClampBody(&b, stage))
	assert.Equal(t, 5.0, b.X)
	assert.Equal(t, 355.0, b.Y)
	assert.Zero(t, b.VelX)
	assert.Zero(t, b.VelY)
	assert.False(t, math.IsNaN(b.X))
}
