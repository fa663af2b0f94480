package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameClock_Monotonic(t *testing.T) {
	fc := NewFrameClock()
	assert.True(t, fc.IsFrozen(), "new clock starts frozen")

	_, ok := fc.Advance()
	assert.False(t, ok)
	assert.Equal(t, int64(0), fc.Current())

	fc.Thaw()
	for want := int64(1); want <= 100; want++ {
		got, ok := fc.Advance()
		require.True(t, ok)
		require.Equal(t, want, got)
		require.Equal(t, want, fc.Current())
	}
}

func TestFrameClock_PauseKeepsCount(t *testing.T) {
	fc := NewFrameClock()
	fc.Thaw()
	for i := 0; i < 5; i++ {
		fc.Advance()
	}
	fc.Freeze()
	fc.Advance()
	fc.Advance()
	assert.Equal(t, int64(5), fc.Current())

	fc.Thaw()
	got, ok := fc.Advance()
	require.True(t, ok)
	assert.Equal(t, int64(6), got, "resume continues rather than restarting")
}

func TestFrameClock_Reset(t *testing.T) {
	fc := NewFrameClock()
	fc.Thaw()
	fc.Advance()
	fc.Advance()
	fc.Reset()
	assert.Equal(t, int64(0), fc.Current())
	assert.False(t, fc.IsFrozen(), "reset does not change freeze state")

	fc.Freeze()
	fc.Reset()
	assert.Equal(t, int64(0), fc.Current())
}

func TestFrameClock_ConcurrentAdvance(t *testing.T) {
	fc := NewFrameClock()
	fc.Thaw()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				fc.Advance()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(8000), fc.Current())
}
