// Package metrics provides Prometheus metrics for the fuel planning service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the fuel planning service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scenario metrics
	scenariosBuilt        prometheus.Counter
	scenariosDeduplicated prometheus.Counter
	buildLatency          prometheus.Histogram
	guardrailRisk         *prometheus.HistogramVec
	batchSize             prometheus.Histogram
	storedScenarios       prometheus.Gauge

	// Kit metrics
	kitsAssembled       *prometheus.CounterVec
	kitAssemblyFailures prometheus.Counter

	// Store metrics
	storeLatency *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
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
		namespace:        "fuelplan",
		subsystem:        "engine",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // metric declarations
	auto := promauto.With(m.registry)

	m.scenariosBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scenarios_built_total",
		Help:      "Total number of scenarios computed from scratch",
	})

	m.scenariosDeduplicated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scenarios_deduplicated_total",
		Help:      "Total number of requests answered by an already stored scenario",
	})

	m.buildLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scenario_build_latency_milliseconds",
		Help:      "Scenario build latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.guardrailRisk = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "guardrail_risk_ratio",
			Help:      "Distribution of simulated guardrail breach probabilities",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"risk"},
	)

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_size",
		Help:      "Number of scenarios per batch request",
		Buckets:   prometheus.LinearBuckets(1, 1, 6),
	})

	m.storedScenarios = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stored_scenarios",
		Help:      "Number of scenarios held by the store",
	})

	m.kitsAssembled = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "kits_assembled_total",
			Help:      "Total number of kits assembled by variant",
		},
		[]string{"variant"},
	)

	m.kitAssemblyFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "kit_assembly_failures_total",
		Help:      "Total number of kit assemblies rejected by preference filtering",
	})

	m.storeLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_latency_milliseconds",
			Help:      "Store operation latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and type",
		},
		[]string{"component", "error_type"},
	)
}

// RecordScenarioBuilt increments the built scenarios counter.
func RecordScenarioBuilt() {
	globalManager.scenariosBuilt.Inc()
}

// RecordScenarioDeduplicated increments the deduplicated scenarios counter.
func RecordScenarioDeduplicated() {
	globalManager.scenariosDeduplicated.Inc()
}

// RecordBuildLatency records scenario build latency in milliseconds.
func RecordBuildLatency(latencyMs float64) {
	globalManager.buildLatency.Observe(latencyMs)
}

// RecordGuardrailRisks records the three simulated breach probabilities.
func RecordGuardrailRisks(gi, sodium, caffeine float64) {
	globalManager.guardrailRisk.WithLabelValues("gi").Observe(gi)
	globalManager.guardrailRisk.WithLabelValues("sodium").Observe(sodium)
	globalManager.guardrailRisk.WithLabelValues("caffeine").Observe(caffeine)
}

// RecordBatchSize records the size of a batch request.
func RecordBatchSize(size int) {
	globalManager.batchSize.Observe(float64(size))
}

// UpdateStoredScenarios sets the number of stored scenarios.
func UpdateStoredScenarios(count int64) {
	globalManager.storedScenarios.Set(float64(count))
}

// RecordKitAssembled increments the assembled kits counter for variant.
func RecordKitAssembled(variant string) {
	globalManager.kitsAssembled.WithLabelValues(variant).Inc()
}

// RecordKitAssemblyFailure increments the kit assembly failure counter.
func RecordKitAssemblyFailure() {
	globalManager.kitAssemblyFailures.Inc()
}

// RecordStoreLatency records the latency of a store operation.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
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
