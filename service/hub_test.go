package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recording(name string, log *[]string, deps ...string) *Func {
	return &Func{
		ID:   name,
		Deps: deps,
		OnStart: func(context.Context) error {
			*log = append(*log, "start "+name)
			return nil
		},
		OnStop: func() error {
			*log = append(*log, "stop "+name)
			return nil
		},
	}
}

func TestHub_DependencyOrder(t *testing.T) {
	var log []string
	h := NewHub(nil)
	require.NoError(t, h.Register(recording("server", &log, "engine")))
	require.NoError(t, h.Register(recording("engine", &log, "audio")))
	require.NoError(t, h.Register(recording("audio", &log)))
	require.NoError(t, h.Register(recording("watcher", &log, "engine")))

	order, err := h.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"audio", "engine", "server", "watcher"}, order)

	require.NoError(t, h.StartAll(context.Background()))
	h.StopAll()
	assert.Equal(t, []string{
		"start audio", "start engine", "start server", "start watcher",
		"stop watcher", "stop server", "stop engine", "stop audio",
	}, log)
}

func TestHub_StartFailureRollsBack(t *testing.T) {
	var log []string
	h := NewHub(nil)
	require.NoError(t, h.Register(recording("audio", &log)))
	boom := errors.New("boom")
	require.NoError(t, h.Register(&Func{ID: "engine", Deps: []string{"audio"}, OnStart: func(context.Context) error { return boom }}))

	err := h.StartAll(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start audio", "stop audio"}, log)

	// Nothing left to stop
	h.StopAll()
	assert.Len(t, log, 2)
}

func TestHub_Errors(t *testing.T) {
	h := NewHub(nil)
	require.NoError(t, h.Register(&Func{ID: "a"}))
	assert.ErrorIs(t, h.Register(&Func{ID: "a"}), ErrDuplicate)

	require.NoError(t, h.Register(&Func{ID: "b", Deps: []string{"missing"}}))
	_, err := h.Order()
	assert.ErrorIs(t, err, ErrUnknown)

	c := NewHub(nil)
	require.NoError(t, c.Register(&Func{ID: "x", Deps: []string{"y"}}))
	require.NoError(t, c.Register(&Func{ID: "y", Deps: []string{"x"}}))
	assert.ErrorIs(t, c.StartAll(context.Background()), ErrCycle)
}
