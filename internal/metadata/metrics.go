package metadata

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters derived from recorded events. It owns its
// registry so a run can dump exactly its own counters to a textfile.
type Metrics struct {
	registry     *prometheus.Registry
	cacheLookups *prometheus.CounterVec
	fetches      *prometheus.CounterVec
	errors       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paper_review_cache_lookups_total",
				Help: "Response cache lookups by cache name and result.",
			},
			[]string{"cache", "result"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paper_review_fetches_total",
				Help: "HTTP fetches by host and status code.",
			},
			[]string{"host", "status"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paper_review_errors_total",
				Help: "Recorded errors by package and cause.",
			},
			[]string{"package", "cause"},
		),
	}
	m.registry.MustRegister(m.cacheLookups, m.fetches, m.errors)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the current counters in the Prometheus text format,
// suitable for a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
