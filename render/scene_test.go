package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/spritestage/component"
)

func sceneActors() []component.Actor {
	return []component.Actor{
		component.Normalize(component.Actor{ID: "a", Name: "cat", X: 10, Y: 10, Visible: true}),
		component.Normalize(component.Actor{ID: "b", Name: "dog", X: 50, Y: 50, Visible: true}),
		component.Normalize(component.Actor{ID: "c", Name: "ghost", X: 90, Y: 90, Visible: false}),
	}
}

func overlayOf(entries map[string][2]float64) OverlayLookup {
	return func(id string) (float64, float64, bool) {
		p, ok := entries[id]
		return p[0], p[1], ok
	}
}

func TestCompose_PositionPriority(t *testing.T) {
	ov := overlayOf(map[string][2]float64{"a": {120, 80}, "b": {60, 60}})

	tests := []struct {
		name    string
		running bool
		preview Preview
		wantA   [2]float64
		srcA    PositionSource
		wantB   [2]float64
		srcB    PositionSource
	}{
		{"paused uses store", false, Preview{}, [2]float64{10, 10}, FromStore, [2]float64{50, 50}, FromStore},
		{"running uses overlay", true, Preview{}, [2]float64{120, 80}, FromOverlay, [2]float64{60, 60}, FromOverlay},
		{"preview beats overlay", true, Preview{ID: "a", X: 1, Y: 2, Active: true}, [2]float64{1, 2}, FromPreview, [2]float64{60, 60}, FromOverlay},
		{"preview while paused", false, Preview{ID: "b", X: 3, Y: 4, Active: true}, [2]float64{10, 10}, FromStore, [2]float64{3, 4}, FromPreview},
		{"inactive preview ignored", false, Preview{ID: "a", X: 1, Y: 2}, [2]float64{10, 10}, FromStore, [2]float64{50, 50}, FromStore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := Compose(ComposeInput{
				Width: 480, Height: 360,
				Running: tt.running,
				Actors:  sceneActors(),
				Overlay: ov,
				Preview: tt.preview,
			})
			require.Len(t, sc.Actors, 2, "invisible actors are not drawn")

			a, ok := sc.Find("a")
			require.True(t, ok)
			assert.Equal(t, tt.wantA, [2]float64{a.X, a.Y})
			assert.Equal(t, tt.srcA, a.Source)

			b, _ := sc.Find("b")
			assert.Equal(t, tt.wantB, [2]float64{b.X, b.Y})
			assert.Equal(t, tt.srcB, b.Source)
		})
	}
}

func TestCompose_DoesNotMutateInput(t *testing.T) {
	actors := sceneActors()
	actors[0].Queue = []component.Action{{Type: "move", Args: []float64{1}}}
	in := ComposeInput{Width: 480, Height: 360, Running: true, Actors: actors,
		Overlay: overlayOf(map[string][2]float64{"a": {7, 7}}), Selected: "a"}

	sc := Compose(in)
	sc.Actors[0].Queue[0].Args[0] = 99

	assert.Equal(t, 10.0, actors[0].X)
	assert.Equal(t, 1.0, actors[0].Queue[0].Args[0])
	assert.True(t, sc.Actors[0].Selected)
	assert.False(t, sc.Actors[1].Selected)
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend(" Physics ")
	require.NoError(t, err)
	assert.Equal(t, BackendPhysics, b)
	assert.True(t, b.Capabilities().Has(CapPhysicsDrag))
	assert.False(t, b.Capabilities().Has(CapManualDrag))

	b, err = ParseBackend("draw")
	require.NoError(t, err)
	assert.Equal(t, CapManualDrag, b.Capabilities())

	_, err = ParseBackend("webgl")
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, RGB{255, 0, 0}, ParseColor("#ff0000", RGBBlack))
	assert.Equal(t, RGB{0, 255, 0}, ParseColor("#0f0", RGBBlack))
	assert.Equal(t, RGB{255, 0, 0}, ParseColor("red", RGBBlack))
	assert.Equal(t, RGBWhite, ParseColor("not-a-color", RGBWhite))
	assert.Equal(t, RGBWhite, ParseColor("", RGBWhite))
}

func TestContextRoundTrip(t *testing.T) {
	ctx := NewContext(480, 360, 96, 37)
	assert.Equal(t, 36, ctx.CanvasRows)

	col, row := ctx.ToCell(240, 180)
	assert.Equal(t, 48, col)
	assert.Equal(t, 18, row)

	x, y, ok := ctx.ToCanvas(col, row)
	require.True(t, ok)
	assert.InDelta(t, 242.5, x, 1e-9)
	assert.InDelta(t, 185, y, 1e-9)

	_, _, ok = ctx.ToCanvas(0, 36)
	assert.False(t, ok, "status row is not canvas")
}
