package persist

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/spritestage/component"
)

func sampleActors() []component.Actor {
	return []component.Actor{
		component.Normalize(component.Actor{ID: "cat", Name: "cat", X: 10, Y: 20, Visible: true,
			Queue: []component.Action{{Type: "move", Args: []float64{1, 2}}}, State: component.ActionRunning}),
		component.Normalize(component.Actor{ID: "dog", Name: "Rex", X: 300, Y: 200, Size: 44, WaitUntil: 120}),
	}
}

// runStoreContract checks behavior every Store implementation shares
func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		snap := NewSnapshot("stage", 42, sampleActors())
		require.NoError(t, store.Save(ctx, snap))

		loaded, err := store.Load(ctx, "stage")
		require.NoError(t, err)
		assert.Equal(t, int64(42), loaded.Frame)
		assert.Equal(t, sampleActors(), loaded.ActorList())
		assert.WithinDuration(t, snap.SavedAt, loaded.SavedAt, time.Second)
	})

	t.Run("Overwrite", func(t *testing.T) {
		actors := sampleActors()
		actors[0].X = 99
		require.NoError(t, store.Save(ctx, NewSnapshot("stage", 43, actors)))
		loaded, err := store.Load(ctx, "stage")
		require.NoError(t, err)
		assert.Equal(t, 99.0, loaded.ActorList()[0].X)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List and Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, NewSnapshot("backup", 1, nil)))
		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"backup", "stage"}, keys)

		require.NoError(t, store.Delete(ctx, "backup"))
		_, err = store.Load(ctx, "backup")
		assert.ErrorIs(t, err, ErrNotFound)
		keys, err = store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"stage"}, keys)
	})

	t.Run("Invalid Key", func(t *testing.T) {
		err := store.Save(ctx, NewSnapshot("../escape", 0, nil))
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestFileStore_Contract(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	runStoreContract(t, store)
}

func TestRedisStore_Contract(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, WithPrefix("test:"))
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	runStoreContract(t, store)
	assert.True(t, mr.Exists("test:stage"))
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), WithTTL(time.Minute))
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, NewSnapshot("stage", 0, sampleActors())))
	assert.Equal(t, time.Minute, mr.TTL("spritestage:snapshot:stage"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, "stage")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAutosaver_SavesOnIntervalAndStop(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	frame := int64(0)
	a := NewAutosaver(store, "auto", 5*time.Millisecond, func() (int64, []component.Actor) {
		frame++
		return frame, sampleActors()
	}, nil)

	require.NoError(t, a.Start(context.Background()))
	require.Eventually(t, func() bool { return a.Saves() >= 2 }, 2*time.Second, time.Millisecond)
	require.NoError(t, a.Stop())
	require.NoError(t, a.Stop())

	snap, err := store.Load(context.Background(), "auto")
	require.NoError(t, err)
	assert.Equal(t, frame, snap.Frame, "final save carries the last frame")
}

func TestAutosaver_ZeroIntervalSavesOnStop(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	a := NewAutosaver(store, "auto", 0, func() (int64, []component.Actor) { return 7, nil }, nil)

	require.NoError(t, a.Start(context.Background()))
	assert.Zero(t, a.Saves())
	require.NoError(t, a.Stop())
	assert.Equal(t, 1, a.Saves())
}
