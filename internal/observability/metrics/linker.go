// Package metrics provides linker metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LinkerMetrics contains Prometheus metrics for the matching and committing
// pipeline. Counters are labeled by the rule kind that produced the candidate.
type LinkerMetrics struct {
	registry *prometheus.Registry

	linksCreatedTotal       *prometheus.CounterVec
	suggestionsCreatedTotal *prometheus.CounterVec
	noiseSkippedTotal       *prometheus.CounterVec
	persistFailuresTotal    prometheus.Counter

	batchDuration      prometheus.Histogram
	batchMessagesTotal prometheus.Counter

	suggestionQueueDepth prometheus.Gauge

	collectors []prometheus.Collector
}

// NewLinkerMetrics creates and registers new linker metrics
func NewLinkerMetrics(registry *prometheus.Registry) (*LinkerMetrics, error) {
	m := &LinkerMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *LinkerMetrics) initMetrics() {
	m.linksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maillink_links_created_total",
			Help: "Total number of links committed, by rule kind",
		},
		[]string{"rule_kind"},
	)

	m.suggestionsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maillink_suggestions_created_total",
			Help: "Total number of suggestions queued for review, by rule kind",
		},
		[]string{"rule_kind"},
	)

	m.noiseSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maillink_noise_skipped_total",
			Help: "Total number of candidates dropped below the low threshold, by rule kind",
		},
		[]string{"rule_kind"},
	)

	m.persistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "maillink_persist_failures_total",
			Help: "Total number of candidates whose commit failed and needs retry",
		},
	)

	m.batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "maillink_batch_duration_seconds",
			Help:    "Duration of batch processing runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	m.batchMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "maillink_batch_messages_total",
			Help: "Total number of messages processed by batch runs",
		},
	)

	m.suggestionQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "maillink_suggestion_queue_depth",
			Help: "Number of suggestions currently pending human review",
		},
	)

	m.collectors = []prometheus.Collector{
		m.linksCreatedTotal,
		m.suggestionsCreatedTotal,
		m.noiseSkippedTotal,
		m.persistFailuresTotal,
		m.batchDuration,
		m.batchMessagesTotal,
		m.suggestionQueueDepth,
	}
}

// RecordLinkCreated increments the link counter for a rule kind
func (m *LinkerMetrics) RecordLinkCreated(ruleKind string) {
	m.linksCreatedTotal.WithLabelValues(ruleKind).Inc()
}

// RecordSuggestionCreated increments the suggestion counter for a rule kind
func (m *LinkerMetrics) RecordSuggestionCreated(ruleKind string) {
	m.suggestionsCreatedTotal.WithLabelValues(ruleKind).Inc()
}

// RecordNoiseSkipped increments the noise counter for a rule kind
func (m *LinkerMetrics) RecordNoiseSkipped(ruleKind string) {
	m.noiseSkippedTotal.WithLabelValues(ruleKind).Inc()
}

// RecordPersistFailure increments the persistence failure counter
func (m *LinkerMetrics) RecordPersistFailure() {
	m.persistFailuresTotal.Inc()
}

// RecordBatch records the duration and size of a completed batch run
func (m *LinkerMetrics) RecordBatch(durationSeconds float64, messages int) {
	m.batchDuration.Observe(durationSeconds)
	m.batchMessagesTotal.Add(float64(messages))
}

// SetSuggestionQueueDepth updates the pending suggestion gauge
func (m *LinkerMetrics) SetSuggestionQueueDepth(depth int64) {
	m.suggestionQueueDepth.Set(float64(depth))
}

// Describe implements the prometheus.Collector interface
func (m *LinkerMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface
func (m *LinkerMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}
