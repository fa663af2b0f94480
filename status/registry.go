package status

import "sync/atomic"

// Registry groups the metric maps of one engine by value type
// Owners look up their pointers once at construction and update them on the frame path
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates a registry with empty maps
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns the number of keys across all maps
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Values reads every numeric metric; bools export as 0 or 1, strings are skipped
func (r *Registry) Values() map[string]float64 {
	out := make(map[string]float64)
	r.Bools.Range(func(key string, b *atomic.Bool) {
		out[key] = 0
		if b.Load() {
			out[key] = 1
		}
	})
	r.Ints.Range(func(key string, n *atomic.Int64) { out[key] = float64(n.Load()) })
	r.Floats.Range(func(key string, f *AtomicFloat) { out[key] = f.Get() })
	return out
}
