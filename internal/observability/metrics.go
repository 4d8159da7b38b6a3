// Package observability provides metrics collection for the maillink engine.
package observability

import (
	"fmt"

	"github.com/atelierops/maillink-go/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Linker   *metrics.LinkerMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric
// collectors against a private registry.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	linkerMetrics, err := metrics.NewLinkerMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create linker metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Linker:   linkerMetrics,
	}, nil
}

// Registry exposes the underlying registry so callers can gather or serve
// the metrics however the deployment needs.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
