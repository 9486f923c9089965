// Package metrics provides Prometheus metrics for the haggle game service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace string
	subsystem string
	registry  prometheus.Registerer

	// Game metrics - what matters for the negotiation protocol
	sessionsStarted  prometheus.Counter
	sessionsFinished prometheus.Counter
	turnsApplied     *prometheus.CounterVec
	pointsAwarded    prometheus.Counter

	// Interpreter metrics - fallbacks are expected, but a spike means
	// the collaborator stopped honoring the response format
	interpreterFallbacks *prometheus.CounterVec

	// Collaborator metrics
	collaboratorRequests prometheus.Counter
	collaboratorErrors   *prometheus.CounterVec
	collaboratorLatency  prometheus.Histogram

	// Store metrics
	sessionsTotal      prometheus.Gauge
	storeConflicts     prometheus.Counter
	storeUpdateLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "haggle",
		subsystem: "game",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.sessionsStarted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_started_total",
		Help:      "Number of game sessions created.",
	})
	m.sessionsFinished = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_finished_total",
		Help:      "Number of game sessions that reached the final round.",
	})
	m.turnsApplied = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "turns_applied_total",
		Help:      "Turn events appended, labeled by actor and role.",
	}, []string{"actor", "role"})
	m.pointsAwarded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "points_awarded_total",
		Help:      "Total points awarded across both players.",
	})
	m.interpreterFallbacks = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interpreter_fallbacks_total",
		Help:      "Collaborator responses that failed to parse, labeled by mode.",
	}, []string{"mode"})
	m.collaboratorRequests = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "collaborator_requests_total",
		Help:      "Completion requests sent to the reasoning collaborator.",
	})
	m.collaboratorErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "collaborator_errors_total",
		Help:      "Collaborator failures, labeled by class.",
	}, []string{"class"})
	m.collaboratorLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "collaborator_latency_ms",
		Help:      "Completion round-trip latency in milliseconds.",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})
	m.sessionsTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_sessions",
		Help:      "Sessions currently held by the store.",
	})
	m.storeConflicts = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_version_conflicts_total",
		Help:      "Conditional writes rejected because the record changed underneath.",
	})
	m.storeUpdateLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_update_latency_ms",
		Help:      "Store write latency in milliseconds.",
		Buckets:   prometheus.DefBuckets,
	})
	m.storeQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_ms",
		Help:      "Store read latency in milliseconds.",
		Buckets:   prometheus.DefBuckets,
	})
	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests, labeled by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 30000},
	}, []string{"endpoint", "method", "status"})
	m.errorsByComponent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Errors labeled by component and kind.",
	}, []string{"component", "kind"})
	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines.",
	})
}

// GetRegistry returns the custom registry for serving metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Game metrics.
func RecordSessionStarted()  { globalManager.sessionsStarted.Inc() }
func RecordSessionFinished() { globalManager.sessionsFinished.Inc() }
func RecordTurnApplied(actor, role string) {
	globalManager.turnsApplied.WithLabelValues(actor, role).Inc()
}
func RecordPointsAwarded(points int) { globalManager.pointsAwarded.Add(float64(points)) }

// Interpreter metrics.
func RecordInterpreterFallback(mode string) {
	globalManager.interpreterFallbacks.WithLabelValues(mode).Inc()
}

// Collaborator metrics.
func RecordCollaboratorRequest() { globalManager.collaboratorRequests.Inc() }
func RecordCollaboratorError(class string) {
	globalManager.collaboratorErrors.WithLabelValues(class).Inc()
}
func RecordCollaboratorLatency(ms float64) { globalManager.collaboratorLatency.Observe(ms) }

// Store metrics.
func UpdateSessionsTotal(n int)          { globalManager.sessionsTotal.Set(float64(n)) }
func RecordStoreConflict()               { globalManager.storeConflicts.Inc() }
func RecordStoreUpdateLatency(ms float64) { globalManager.storeUpdateLatency.Observe(ms) }
func RecordStoreQueryLatency(ms float64)  { globalManager.storeQueryLatency.Observe(ms) }

// HTTP metrics.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// Error metrics.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// System metrics.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}
