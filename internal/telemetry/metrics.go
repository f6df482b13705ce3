package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics represents the collection of all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Scan metrics
	ScansStarted         prometheus.Counter
	ScansCompleted       prometheus.Counter
	ScansFailed          prometheus.Counter
	ScanDuration         prometheus.Histogram
	DependenciesScanned  prometheus.Counter
	VulnerabilitiesFound *prometheus.CounterVec

	// Upstream API metrics
	OSVRequests    *prometheus.CounterVec
	GitHubRequests *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.ScansStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scans_started_total",
			Help: "Total number of scans started",
		},
	)

	m.ScansCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scans_completed_total",
			Help: "Total number of scans completed successfully",
		},
	)

	m.ScansFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scans_failed_total",
			Help: "Total number of scans ended by a fatal error",
		},
	)

	m.ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scan_duration_seconds",
			Help:    "Duration of complete scans in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	m.DependenciesScanned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dependencies_scanned_total",
			Help: "Total number of unique dependencies checked",
		},
	)

	m.VulnerabilitiesFound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulnerabilities_found_total",
			Help: "Total number of vulnerabilities found",
		},
		[]string{"severity"},
	)

	m.OSVRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osv_requests_total",
			Help: "Total number of OSV API requests",
		},
		[]string{"outcome"},
	)

	m.GitHubRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_requests_total",
			Help: "Total number of GitHub API requests",
		},
		[]string{"outcome"},
	)

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ScansStarted,
		m.ScansCompleted,
		m.ScansFailed,
		m.ScanDuration,
		m.DependenciesScanned,
		m.VulnerabilitiesFound,
		m.OSVRequests,
		m.GitHubRequests,
	)

	return m
}

// RecordScan updates the scan counters for one finished scan.
func (m *Metrics) RecordScan(start time.Time, failed bool, deps int, bySeverity map[string]int) {
	if failed {
		m.ScansFailed.Inc()
	} else {
		m.ScansCompleted.Inc()
	}
	m.ScanDuration.Observe(time.Since(start).Seconds())
	m.DependenciesScanned.Add(float64(deps))
	for severity, count := range bySeverity {
		m.VulnerabilitiesFound.WithLabelValues(severity).Add(float64(count))
	}
}

// RequestTrackingMiddleware records request counts and latency.
func (m *Metrics) RequestTrackingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, http.StatusText(rw.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// responseWriter is a wrapper to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers working behind the middleware.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
