package status

import (
	"math"
	"sync/atomic"
	"unicode/utf8"
)

// MaxStringLen caps AtomicString values in bytes
const MaxStringLen = 32

// AtomicFloat is a float64 stored as its IEEE bits; the zero value reads 0
type AtomicFloat struct {
	bits atomic.Uint64
}

// Set stores val
func (f *AtomicFloat) Set(val float64) { f.bits.Store(math.Float64bits(val)) }

// Get loads the value
func (f *AtomicFloat) Get() float64 { return math.Float64frombits(f.bits.Load()) }

// Smooth folds sample into an exponential moving average with weight alpha in (0, 1]
// The first sample on a zero value seeds the average
func (f *AtomicFloat) Smooth(sample, alpha float64) float64 {
	for {
		old := f.bits.Load()
		next := sample
		if old != 0 {
			cur := math.Float64frombits(old)
			next = cur + alpha*(sample-cur)
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// AtomicString holds a short label such as a run state; the zero value reads ""
type AtomicString struct {
	v atomic.Value
}

// Store sets val, cut to MaxStringLen bytes on a rune boundary
func (s *AtomicString) Store(val string) {
	if len(val) > MaxStringLen {
		cut := MaxStringLen
		for cut > 0 && !utf8.RuneStart(val[cut]) {
			cut--
		}
		val = val[:cut]
	}
	s.v.Store(val)
}

// Load returns the current value
func (s *AtomicString) Load() string {
	v, _ := s.v.Load().(string)
	return v
}
