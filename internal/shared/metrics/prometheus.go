package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	intakeVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_verdicts_total",
			Help: "Total number of intake eligibility verdicts",
		},
		[]string{"status", "reason"},
	)

	documentsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_generated_total",
			Help: "Total number of intake documents generated",
		},
		[]string{"layout", "language"},
	)

	documentGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "document_generation_duration_seconds",
			Help:    "Render plus PDF conversion duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"layout"},
	)

	documentFaults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_faults_total",
			Help: "Total number of rendering pipeline faults",
		},
		[]string{"stage"},
	)

	insurerLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insurer_lookups_total",
			Help: "Total number of insured-party lookups against the PVS",
		},
		[]string{"result"},
	)

	// Database metrics
	dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath normalizes URL paths for metrics to avoid cardinality explosion
func normalizePath(path string) string {
	if len(path) > 100 {
		return "/api/..."
	}
	return path
}

// --- Business metric helpers ---

// RecordVerdict records an eligibility verdict. Reason is empty for accepts.
func RecordVerdict(status, reason string) {
	if reason == "" {
		reason = "none"
	}
	intakeVerdicts.WithLabelValues(status, reason).Inc()
}

// RecordDocumentGenerated records a completed document generation
func RecordDocumentGenerated(layout, language string, duration time.Duration) {
	documentsGenerated.WithLabelValues(layout, language).Inc()
	documentGenerationDuration.WithLabelValues(layout).Observe(duration.Seconds())
}

// RecordDocumentFault records a rendering pipeline fault by stage
// (render, embed, convert)
func RecordDocumentFault(stage string) {
	documentFaults.WithLabelValues(stage).Inc()
}

// RecordInsurerLookup records an insured-party lookup result (hit, miss, error)
func RecordInsurerLookup(result string) {
	insurerLookups.WithLabelValues(result).Inc()
}

// RecordDBConnections records active database connections
func RecordDBConnections(count int) {
	dbConnectionsActive.Set(float64(count))
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
