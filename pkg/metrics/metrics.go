// Package metrics exposes the engine's live counters as Prometheus
// collectors: queue depth, active workers, and NodeTable size.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors bundles the gauges a running Engine updates on a tick.
// Registering nil Collectors is a no-op everywhere it's threaded
// through, so metrics remain fully optional.
type Collectors struct {
	QueueDepth     prometheus.Gauge
	ActiveWorkers  prometheus.Gauge
	NodeTableSize  prometheus.Gauge
	UniqueTotal    prometheus.Counter
	RedundantTotal prometheus.Counter
}

// New constructs a Collectors with the given namespace and registers
// each collector with reg. reg may be a dedicated
// *prometheus.Registry or prometheus.DefaultRegisterer.
func New(namespace string, reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Number of canonical formulae currently pending exploration.",
		}),
		ActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workers",
			Help:      "Number of workers currently processing a popped formula.",
		}),
		NodeTableSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodetable_size",
			Help:      "Number of distinct canonical formulae recorded so far.",
		}),
		UniqueTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unique_classifications_total",
			Help:      "Total number of child formulae classified UNIQUE.",
		}),
		RedundantTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redundant_classifications_total",
			Help:      "Total number of child formulae classified REDUNDANT.",
		}),
	}
	reg.MustRegister(c.QueueDepth, c.ActiveWorkers, c.NodeTableSize, c.UniqueTotal, c.RedundantTotal)
	return c
}
