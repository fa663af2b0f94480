package status

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes a Registry to prometheus as untyped gauges
// Metrics are read at scrape time; registration of new keys needs no re-registration
type Collector struct {
	namespace string
	registry  *Registry
	labels    prometheus.Labels
}

// NewCollector wraps registry; constLabels are attached to every metric
func NewCollector(namespace string, registry *Registry, constLabels prometheus.Labels) *Collector {
	return &Collector{
		namespace: namespace,
		registry:  registry,
		labels:    constLabels,
	}
}

// Describe implements prometheus.Collector
// The metric set is dynamic, so the collector is unchecked and describes nothing
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for key, val := range c.registry.Values() {
		desc := prometheus.NewDesc(
			prometheus.BuildFQName(c.namespace, "", MetricName(key)),
			"spritestage status metric "+key,
			nil,
			c.labels,
		)
		m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, val)
		if err != nil {
			continue
		}
		ch <- m
	}
}

// MetricName converts a dotted registry key into a prometheus-safe name
func MetricName(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
