package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/spritestage/component"
)

var stage = Bounds{Width: 480, Height: 360, Inset: 5}

func actorAt(id string, x, y float64) component.Actor {
	return component.Normalize(component.Actor{ID: id, X: x, Y: y, Size: 30, Visible: true})
}

func TestHitTest(t *testing.T) {
	back := actorAt("back", 100, 100)
	front := actorAt("front", 110, 100)
	hidden := actorAt("hidden", 300, 300)
	hidden.Visible = false
	actors := []component.Actor{back, front, hidden}

	tests := []struct {
		name   string
		px, py float64
		want   string
	}{
		{"overlap picks topmost", 105, 100, "front"},
		{"only back reachable", 86, 100, "back"},
		{"edge is inclusive", 125, 100, "front"},
		{"outside everything", 200, 200, ""},
		{"invisible ignored", 300, 300, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := HitTest(actors, tt.px, tt.py)
			if tt.want == "" {
				assert.False(t, ok)
				assert.Equal(t, -1, idx)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, actors[idx].ID)
		})
	}
}

func TestBoundsClamp(t *testing.T) {
	x, y := stage.Clamp(-10, 500)
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 355.0, y)

	x, y = stage.Clamp(240, 180)
	assert.Equal(t, 240.0, x)
	assert.Equal(t, 180.0, y)
}

func TestMachine_ClickWithinThreshold(t *testing.T) {
	m := NewMachine(stage, 3)
	actors := []component.Actor{actorAt("a", 100, 100)}

	press := m.Press(actors, 102, 98)
	require.True(t, press.Hit)
	assert.Equal(t, "a", press.ID)
	assert.Equal(t, DragPressed, m.State())

	m.Move(104, 99)
	assert.Equal(t, DragPressed, m.State())
	_, _, _, ok := m.Preview()
	assert.False(t, ok, "no preview under the threshold")

	rel := m.Release(103, 100)
	assert.Equal(t, ReleaseClick, rel.Kind)
	assert.Equal(t, "a", rel.ID)
	assert.Equal(t, DragIdle, m.State())
}

func TestMachine_ThresholdIsStrict(t *testing.T) {
	m := NewMachine(stage, 3)
	m.Press([]component.Actor{actorAt("a", 100, 100)}, 100, 100)
	m.Move(103, 100)
	assert.Equal(t, DragPressed, m.State())
	m.Move(103.1, 100)
	assert.Equal(t, DragDragging, m.State())

	// Returning to the origin stays a drag
	rel := m.Release(100, 100)
	assert.Equal(t, ReleaseCommit, rel.Kind)
	assert.Equal(t, 100.0, rel.X)
}

func TestMachine_OffsetKeepsActorUnderPointer(t *testing.T) {
	m := NewMachine(stage, 3)
	m.Press([]component.Actor{actorAt("a", 100, 100)}, 110, 95)

	mv := m.Move(210, 195)
	require.True(t, mv.Active)
	assert.Equal(t, 200.0, mv.X)
	assert.Equal(t, 200.0, mv.Y)

	id, x, y, ok := m.Preview()
	require.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Equal(t, 200.0, x)
	assert.Equal(t, 200.0, y)
}

func TestMachine_CommitRoundsAndClamps(t *testing.T) {
	m := NewMachine(stage, 3)
	m.Press([]component.Actor{actorAt("a", 100, 100)}, 100, 100)
	m.Move(-10, 500)

	rel := m.Release(-10, 500)
	require.Equal(t, ReleaseCommit, rel.Kind)
	assert.Equal(t, 5.0, rel.X)
	assert.Equal(t, 355.0, rel.Y)

	m.Press([]component.Actor{actorAt("b", 100, 100)}, 100, 100)
	rel = m.Release(150.6, 120.4)
	assert.Equal(t, 151.0, rel.X)
	assert.Equal(t, 120.0, rel.Y)
}

func TestMachine_MissAndCancel(t *testing.T) {
	m := NewMachine(stage, 3)
	out := m.Press([]component.Actor{actorAt("a", 100, 100)}, 300, 300)
	assert.False(t, out.Hit)
	assert.False(t, m.Move(310, 310).Active)
	assert.Equal(t, ReleaseNone, m.Release(310, 310).Kind)

	m.Press([]component.Actor{actorAt("a", 100, 100)}, 100, 100)
	m.Move(150, 150)
	m.Cancel()
	assert.Equal(t, DragIdle, m.State())
	assert.Equal(t, ReleaseNone, m.Release(150, 150).Kind)
}

func TestDragStateString(t *testing.T) {
	assert.Equal(t, "idle", DragIdle.String())
	assert.Equal(t, "pressed", DragPressed.String())
	assert.Equal(t, "dragging", DragDragging.String())
	assert.Equal(t, "commit", ReleaseCommit.String())
}
