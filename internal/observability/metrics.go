// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the scoring pipeline.
type Metrics struct {
	// Pipeline metrics
	RunsTotal     *prometheus.CounterVec // labeled by terminal status
	RunDuration   prometheus.Histogram
	StageDuration *prometheus.HistogramVec // labeled by stage
	StageRetries  *prometheus.CounterVec   // labeled by stage

	// Data metrics
	RowsFetched prometheus.Counter
	RowsScored  prometheus.Counter

	// Sink metrics
	SinkWrites *prometheus.CounterVec // labeled by sink, status

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "time_to_shop"
	}

	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by terminal status",
		}, []string{"status"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "End-to-end pipeline run duration",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"stage"}),
		StageRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_retries_total",
			Help:      "Retry attempts per stage after transient failures",
		}, []string{"stage"}),
		RowsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "rows_fetched_total",
			Help:      "Total number of feature rows fetched from the source",
		}),
		RowsScored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "rows_scored_total",
			Help:      "Total number of customers scored",
		}),
		SinkWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "writes_total",
			Help:      "Sink write outcomes by sink and status",
		}, []string{"sink", "status"}),
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "last_successful_run_timestamp_seconds",
			Help:      "Unix timestamp of the last run that persisted results",
		}),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
