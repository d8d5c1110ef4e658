package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/degree-advisor-api/internal/models"
)

// MetricsService owns the Prometheus registry for the advisor API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	admissions      *prometheus.CounterVec
	audits          *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	catalogCourses  prometheus.Gauge
}

// NewMetricsService registers every collector on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_admission_checks_total",
			Help: "Admission checks by outcome and the rule that rejected the course",
		}, []string{"allowed", "rule"}),
		audits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_plan_audits_total",
			Help: "Plan audits by program and validity",
		}, []string{"program", "valid"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_plan_mutations_total",
			Help: "Plan mutations by operation and whether they were applied",
		}, []string{"operation", "applied"}),
		catalogCourses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "advisor_catalog_courses",
			Help: "Courses loaded into the catalog",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requestDuration, m.requestTotal, m.cacheLatency,
		m.cacheWrite, m.cacheLookups, m.admissions, m.audits, m.mutations,
		m.catalogCourses, goroutines)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request latency and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a lookup as a hit or a miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveAdmission counts an admission decision.
func (m *MetricsService) ObserveAdmission(rule models.AdmissionRule, allowed bool) {
	if m == nil {
		return
	}
	label := string(rule)
	if allowed {
		label = "none"
	}
	m.admissions.WithLabelValues(strconv.FormatBool(allowed), label).Inc()
}

// ObserveAudit counts a completed audit.
func (m *MetricsService) ObserveAudit(program models.Program, valid bool) {
	if m == nil {
		return
	}
	m.audits.WithLabelValues(string(program), strconv.FormatBool(valid)).Inc()
}

// ObserveMutation counts a plan add, remove or import.
func (m *MetricsService) ObserveMutation(operation string, applied bool) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, strconv.FormatBool(applied)).Inc()
}

// SetCatalogSize publishes the number of loaded courses.
func (m *MetricsService) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.catalogCourses.Set(float64(n))
}
