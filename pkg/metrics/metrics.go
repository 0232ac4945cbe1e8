// Package metrics counts generated routes. tna-routegen is a short-lived
// interactive tool, so metrics are written to a node-exporter textfile at
// the end of a session instead of being served.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tna_routegen"

// Metrics holds the collectors of one session.
type Metrics struct {
	registry *prometheus.Registry

	RoutesGenerated    *prometheus.CounterVec
	DocumentsWritten   *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	NextHopID          prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RoutesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_generated_total",
			Help:      "Total number of descriptor sets generated.",
		}, []string{"topology"}),
		DocumentsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_written_total",
			Help:      "Total number of descriptor documents persisted.",
		}, []string{"kind"}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Total number of rejected operator answers.",
		}, []string{"field"}),
		NextHopID: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "next_hop_id",
			Help:      "Next free uplink next-hop id.",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Flush writes the registry to path in the text exposition format.
// An empty path is a no-op.
func (m *Metrics) Flush(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
