package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/spritestage/component"
)

func TestReconcile_OneUpdatePerChangedActor(t *testing.T) {
	store := NewActorStore([]component.Actor{actor("a", 10, 10), actor("b", 50, 50)})
	overlay := NewOverlay()

	var events []UpdateEvent
	store.Subscribe(func(ev UpdateEvent) { events = append(events, ev) })

	before := store.List()
	after := component.CloneAll(before)
	after[0].X, after[0].Y = 15, 12
	after[0].State = component.ActionRunning

	r, err := Reconcile(store, overlay, before, after)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, r.Updated)

	require.Len(t, events, 1, "one write carrying every changed field")
	p := events[0].Patch
	require.NotNil(t, p.X)
	assert.Equal(t, 15.0, *p.X)
	assert.Equal(t, 12.0, *p.Y)
	require.NotNil(t, p.State)
	assert.Equal(t, component.ActionRunning, *p.State)
	assert.Nil(t, p.Color)

	pt, ok := overlay.Get("a")
	require.True(t, ok)
	assert.Equal(t, Point{15, 12}, pt)
	_, ok = overlay.Get("b")
	assert.False(t, ok)
}

func TestReconcile_RoundsPositions(t *testing.T) {
	store := NewActorStore([]component.Actor{actor("a", 10, 10)})
	before := store.List()
	after := component.CloneAll(before)
	after[0].X, after[0].Y = 12.6, 9.4

	_, err := Reconcile(store, nil, before, after)
	require.NoError(t, err)
	got, _ := store.Get("a")
	assert.Equal(t, 13.0, got.X)
	assert.Equal(t, 9.0, got.Y)
}

func TestReconcile_SubUnitMoveIsDropped(t *testing.T) {
	store := NewActorStore([]component.Actor{actor("a", 10, 10)})
	var n int
	store.Subscribe(func(UpdateEvent) { n++ })

	before := store.List()
	after := component.CloneAll(before)
	after[0].X = 10.3

	r, err := Reconcile(store, nil, before, after)
	require.NoError(t, err)
	assert.Empty(t, r.Updated)
	assert.Zero(t, n)
}

func TestReconcile_NilOverlayWhilePaused(t *testing.T) {
	store := NewActorStore([]component.Actor{actor("a", 0, 0)})
	overlay := NewOverlay()
	before := store.List()
	after := component.CloneAll(before)
	after[0].X = 40

	_, err := Reconcile(store, nil, before, after)
	require.NoError(t, err)
	assert.Zero(t, overlay.Len())
}

func TestReconcile_RemovedActor(t *testing.T) {
	store := NewActorStore([]component.Actor{actor("a", 0, 0)})
	before := store.List()
	after := component.CloneAll(before)
	after[0].X = 40
	require.NoError(t, store.Remove("a"))

	r, err := Reconcile(store, nil, before, after)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, r.Missing)
}

func TestReconcile_LengthMismatch(t *testing.T) {
	store := NewActorStore(nil)
	_, err := Reconcile(store, nil, []component.Actor{actor("a", 0, 0)}, nil)
	assert.Error(t, err)
}
