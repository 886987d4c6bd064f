// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments of the ingestion pipeline.
type Metrics struct {
	ingestionsTotal  *prometheus.CounterVec
	stageFailures    *prometheus.CounterVec
	classifiedTables *prometheus.CounterVec
	fetchDuration    prometheus.Histogram
	ingestDuration   prometheus.Histogram
	activeIngestions prometheus.Gauge
	registry         *prometheus.Registry
}

// NewMetrics registers the pipeline instruments on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "jobharvest"
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ingestionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "Completed ingestions by action (created, merged, unchanged).",
		}, []string{"action"}),
		stageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Failed ingestions by pipeline stage.",
		}, []string{"stage"}),
		classifiedTables: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classified_tables_total",
			Help:      "Tables classified, by assigned category.",
		}, []string{"category"}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Page fetch latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		ingestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "End-to-end ingestion latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		activeIngestions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_ingestions",
			Help:      "Ingestion units currently in flight.",
		}),
	}
}

// RecordIngestion counts one completed ingestion.
func (m *Metrics) RecordIngestion(action string) {
	m.ingestionsTotal.WithLabelValues(action).Inc()
}

// RecordStageFailure counts one failed ingestion by stage.
func (m *Metrics) RecordStageFailure(stage string) {
	m.stageFailures.WithLabelValues(stage).Inc()
}

// RecordClassification counts one classified table.
func (m *Metrics) RecordClassification(category string) {
	m.classifiedTables.WithLabelValues(category).Inc()
}

// ObserveFetch records a fetch latency sample.
func (m *Metrics) ObserveFetch(d time.Duration) {
	m.fetchDuration.Observe(d.Seconds())
}

// ObserveIngest records an end-to-end latency sample.
func (m *Metrics) ObserveIngest(d time.Duration) {
	m.ingestDuration.Observe(d.Seconds())
}

// IngestionStarted and IngestionFinished track in-flight units.
func (m *Metrics) IngestionStarted() { m.activeIngestions.Inc() }

func (m *Metrics) IngestionFinished() { m.activeIngestions.Dec() }

// Handler serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
