package engine

import (
	"sync/atomic"
)

// FrameClock is the frame counter shared by the executor and reconciliation
// Advances by exactly one per run-frame, frozen while paused, zeroed only by Reset
type FrameClock struct {
	frame    atomic.Int64
	isFrozen atomic.Bool
}

// NewFrameClock creates a clock at frame 0, frozen until Thaw
func NewFrameClock() *FrameClock {
	fc := &FrameClock{}
	fc.isFrozen.Store(true)
	return fc
}

// Advance increments the frame and returns the new value
// A frozen clock does not move; ok is false
func (fc *FrameClock) Advance() (frame int64, ok bool) {
	if fc.isFrozen.Load() {
		return fc.frame.Load(), false
	}
	return fc.frame.Add(1), true
}

// Current returns the last advanced frame
func (fc *FrameClock) Current() int64 {
	return fc.frame.Load()
}

// Reset sets the counter back to 0 without changing the frozen state
func (fc *FrameClock) Reset() {
	fc.frame.Store(0)
}

// Freeze stops advancement; the counter is kept so waits stay valid across pause
func (fc *FrameClock) Freeze() {
	fc.isFrozen.Store(true)
}

// Thaw allows advancement to continue from the current frame
func (fc *FrameClock) Thaw() {
	fc.isFrozen.Store(false)
}

// IsFrozen returns current freeze state
func (fc *FrameClock) IsFrozen() bool {
	return fc.isFrozen.Load()
}
