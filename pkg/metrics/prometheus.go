// Package metrics provides Prometheus metrics for the skill categorization service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Categorization metrics
	scoringLatency   prometheus.Histogram
	scoringErrors    *prometheus.CounterVec
	proposals        prometheus.Counter
	decisions        *prometheus.CounterVec
	ledgerRejections *prometheus.CounterVec
	reviewsOpened    prometheus.Counter

	// Dashboard gauges, refreshed from the ledger
	skillsTotal    prometheus.Gauge
	validationRate prometheus.Gauge
	accuracyRate   prometheus.Gauge

	// Ingestion pipeline
	submissionsAccepted  prometheus.Counter
	submissionsDuplicate prometheus.Counter
	queueSize            prometheus.Gauge
	queueCapacity        prometheus.Gauge
	queueEnqueueErrors   *prometheus.CounterVec
	workerCount          prometheus.Gauge
	workerLatency        prometheus.Histogram
	workerErrors         prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "skillcat",
		subsystem:        "review",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.scoringLatency = auto.NewHistogram(m.histogramOpts(
		"scoring_latency_milliseconds",
		"Histogram of match scoring latency in milliseconds",
	))
	m.scoringErrors = auto.NewCounterVec(m.counterOpts(
		"scoring_errors_total",
		"Total number of scoring failures by kind",
	), []string{"kind"})
	m.proposals = auto.NewCounter(m.counterOpts(
		"proposals_total",
		"Total number of algorithm proposals appended to the ledger",
	))
	m.decisions = auto.NewCounterVec(m.counterOpts(
		"decisions_total",
		"Total number of human decisions appended to the ledger by action",
	), []string{"action"})
	m.ledgerRejections = auto.NewCounterVec(m.counterOpts(
		"ledger_rejections_total",
		"Total number of ledger writes rejected by reason",
	), []string{"reason"})
	m.reviewsOpened = auto.NewCounter(m.counterOpts(
		"reviews_opened_total",
		"Total number of review sessions opened",
	))

	m.skillsTotal = auto.NewGauge(m.gaugeOpts(
		"skills_total",
		"Number of skills with a provenance ledger",
	))
	m.validationRate = auto.NewGauge(m.gaugeOpts(
		"validation_rate_ratio",
		"Fraction of skills with at least one human decision",
	))
	m.accuracyRate = auto.NewGauge(m.gaugeOpts(
		"accuracy_rate_ratio",
		"Fraction of reviewed skills whose proposal was never changed",
	))

	m.submissionsAccepted = auto.NewCounter(m.counterOpts(
		"submissions_accepted_total",
		"Total number of skill submissions accepted for ingestion",
	))
	m.submissionsDuplicate = auto.NewCounter(m.counterOpts(
		"submissions_duplicate_total",
		"Total number of duplicate skill submissions skipped",
	))
	m.queueSize = auto.NewGauge(m.gaugeOpts(
		"queue_size",
		"Current size of the ingestion queue",
	))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts(
		"queue_capacity",
		"Maximum ingestion queue capacity",
	))
	m.queueEnqueueErrors = auto.NewCounterVec(m.counterOpts(
		"queue_enqueue_errors_total",
		"Total number of rejected enqueues by reason",
	), []string{"reason"})
	m.workerCount = auto.NewGauge(m.gaugeOpts(
		"worker_count",
		"Number of ingestion workers",
	))
	m.workerLatency = auto.NewHistogram(m.histogramOpts(
		"worker_processing_latency_milliseconds",
		"Ingestion worker processing latency in milliseconds",
	))
	m.workerErrors = auto.NewCounter(m.counterOpts(
		"worker_errors_total",
		"Total number of failed ingestions",
	))

	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total",
		"Total number of HTTP requests by endpoint and method",
	), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds",
		"HTTP request duration in milliseconds",
	), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts(
		"errors_by_component_total",
		"Total number of errors by component",
	), []string{"component", "error_type"})
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringError increments the scoring error counter for kind.
func RecordScoringError(kind string) {
	globalManager.scoringErrors.WithLabelValues(kind).Inc()
}

// RecordProposal increments the proposals counter.
func RecordProposal() {
	globalManager.proposals.Inc()
}

// RecordDecision increments the decisions counter for action.
func RecordDecision(action string) {
	globalManager.decisions.WithLabelValues(action).Inc()
}

// RecordLedgerRejection increments the rejected writes counter for reason.
func RecordLedgerRejection(reason string) {
	globalManager.ledgerRejections.WithLabelValues(reason).Inc()
}

// RecordReviewOpened increments the opened reviews counter.
func RecordReviewOpened() {
	globalManager.reviewsOpened.Inc()
}

// UpdateSkillsTotal sets the number of skills tracked.
func UpdateSkillsTotal(count int) {
	globalManager.skillsTotal.Set(float64(count))
}

// UpdateRates sets the validation and accuracy gauges.
func UpdateRates(validation, accuracy float64) {
	globalManager.validationRate.Set(validation)
	globalManager.accuracyRate.Set(accuracy)
}

// RecordSubmissionAccepted increments the accepted submissions counter.
func RecordSubmissionAccepted() {
	globalManager.submissionsAccepted.Inc()
}

// RecordSubmissionDuplicate increments the duplicate submissions counter.
func RecordSubmissionDuplicate() {
	globalManager.submissionsDuplicate.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError increments the enqueue error counter for reason.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
