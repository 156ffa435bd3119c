// Package metrics provides Prometheus metrics for the augpipe annotation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Core Pipeline Metrics
	transcriptsProcessed prometheus.Counter
	transcriptsSkipped   prometheus.Counter
	hintsEmitted         *prometheus.CounterVec
	chunksCompleted      prometheus.Counter

	// Predictor Metrics
	predictorInvocations *prometheus.CounterVec
	predictorLatency     prometheus.Histogram
	predictorFailures    prometheus.Counter

	// Reconciliation Metrics
	predictionsKept      prometheus.Counter
	predictionsDiscarded *prometheus.CounterVec

	// Evidence Metrics
	evidenceQueries      prometheus.Counter
	evidenceQueryLatency prometheus.Histogram

	// Queue and Worker Metrics
	queueSize          prometheus.Gauge
	workerCount        prometheus.Gauge
	workerChunkLatency prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "augpipe",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Pipeline Metrics
	m.transcriptsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transcripts_processed_total",
		Help:      "Total number of transcripts handed to the predictor",
	})

	m.transcriptsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transcripts_skipped_total",
		Help:      "Total number of transcripts skipped for exceeding the length bound",
	})

	m.hintsEmitted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "hints_emitted_total",
			Help:      "Total number of hints emitted by feature kind",
		},
		[]string{"feature"},
	)

	m.chunksCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chunks_completed_total",
		Help:      "Total number of transcript chunks completed",
	})

	// Predictor Metrics
	m.predictorInvocations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "predictor_invocations_total",
			Help:      "Total number of predictor invocations by configuration version",
		},
		[]string{"cfg_version"},
	)

	m.predictorLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictor_latency_milliseconds",
		Help:      "Histogram of predictor invocation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.predictorFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictor_failures_total",
		Help:      "Total number of predictor process failures",
	})

	// Reconciliation Metrics
	m.predictionsKept = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_kept_total",
		Help:      "Total number of predictor outputs reconciled into the final set",
	})

	m.predictionsDiscarded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "predictions_discarded_total",
			Help:      "Total number of predictor outputs discarded, by reason",
		},
		[]string{"reason"},
	)

	// Evidence Metrics
	m.evidenceQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evidence_queries_total",
		Help:      "Total number of RNA-seq evidence lookups",
	})

	m.evidenceQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evidence_query_latency_milliseconds",
		Help:      "Histogram of evidence lookup latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Queue and Worker Metrics
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued chunks (backlog indicator)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of active chunk workers",
	})

	m.workerChunkLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_chunk_latency_milliseconds",
		Help:      "Histogram of whole-chunk processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers operating on the global manager.

// RecordTranscriptProcessed increments the processed-transcript counter.
func RecordTranscriptProcessed() {
	globalManager.transcriptsProcessed.Inc()
}

// RecordTranscriptSkipped increments the skipped-transcript counter.
func RecordTranscriptSkipped() {
	globalManager.transcriptsSkipped.Inc()
}

// RecordHintEmitted increments the hint counter for a feature kind.
func RecordHintEmitted(feature string) {
	globalManager.hintsEmitted.WithLabelValues(feature).Inc()
}

// RecordChunkCompleted increments the completed-chunk counter.
func RecordChunkCompleted() {
	globalManager.chunksCompleted.Inc()
}

// RecordPredictorInvocation increments the invocation counter for a cfg version.
func RecordPredictorInvocation(cfgVersion string) {
	globalManager.predictorInvocations.WithLabelValues(cfgVersion).Inc()
}

// RecordPredictorLatency records one predictor invocation latency.
func RecordPredictorLatency(latencyMs float64) {
	globalManager.predictorLatency.Observe(latencyMs)
}

// RecordPredictorFailure increments the predictor failure counter.
func RecordPredictorFailure() {
	globalManager.predictorFailures.Inc()
}

// RecordPredictionKept increments the kept-prediction counter.
func RecordPredictionKept() {
	globalManager.predictionsKept.Inc()
}

// RecordPredictionDiscarded increments the discarded-prediction counter by reason.
func RecordPredictionDiscarded(reason string) {
	globalManager.predictionsDiscarded.WithLabelValues(reason).Inc()
}

// RecordEvidenceQuery increments the evidence lookup counter.
func RecordEvidenceQuery() {
	globalManager.evidenceQueries.Inc()
}

// RecordEvidenceQueryLatency records one evidence lookup latency.
func RecordEvidenceQueryLatency(latencyMs float64) {
	globalManager.evidenceQueryLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the queued-chunk gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateWorkerCount sets the active worker gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerChunkLatency records one whole-chunk processing latency.
func RecordWorkerChunkLatency(latencyMs float64) {
	globalManager.workerChunkLatency.Observe(latencyMs)
}

// GetRegistry returns the custom registry for the metrics HTTP handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
