package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a lightweight summary of the console gateway counters.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	FetchesDispatched        uint64    `json:"fetchesDispatched"`
	FetchesCommitted         uint64    `json:"fetchesCommitted"`
	FetchesFailed            uint64    `json:"fetchesFailed"`
	FetchesStale             uint64    `json:"fetchesStale"`
	ActiveSessions           int64     `json:"activeSessions"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	fetchDispatched  *prometheus.CounterVec
	fetchSettled     *prometheus.CounterVec
	fetchDuration    prometheus.Observer
	activeSessions   prometheus.Gauge
	auditWrites      *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	dispatchedCount      uint64
	committedCount       uint64
	failedCount          uint64
	staleCount           uint64
	sessionCount         int64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "school_api_request_duration_seconds",
		Help:    "Duration of school API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	fetchDispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_fetch_dispatched_total",
		Help: "Dashboard genericData fetches dispatched, by trigger",
	}, []string{"trigger"})

	fetchSettled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_fetch_settled_total",
		Help: "Dashboard genericData fetches settled, by outcome",
	}, []string{"outcome"})

	fetchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_fetch_duration_seconds",
		Help:    "Time from dispatch to settlement of dashboard fetches",
		Buckets: prometheus.DefBuckets,
	})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_sessions_active",
		Help: "Console sessions with a live dashboard context",
	})

	auditWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_audit_writes_total",
		Help: "Audit trail writes, by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, upstreamDuration, fetchDispatched, fetchSettled, fetchDuration, activeSessions, auditWrites, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		upstreamDuration: upstreamDuration,
		fetchDispatched:  fetchDispatched,
		fetchSettled:     fetchSettled,
		fetchDuration:    fetchDuration,
		activeSessions:   activeSessions,
		auditWrites:      auditWrites,
	}
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveUpstream records one school API call.
func (m *MetricsService) ObserveUpstream(operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(operation, fmt.Sprintf("%d", status)).Observe(duration.Seconds())
}

// ObserveFetchDispatched counts a dashboard fetch dispatch.
func (m *MetricsService) ObserveFetchDispatched(trigger FetchTrigger) {
	if m == nil {
		return
	}
	m.fetchDispatched.WithLabelValues(string(trigger)).Inc()
	atomic.AddUint64(&m.dispatchedCount, 1)
}

// ObserveFetchSettled counts a dashboard fetch settlement.
func (m *MetricsService) ObserveFetchSettled(outcome FetchOutcome, duration time.Duration) {
	if m == nil {
		return
	}
	m.fetchSettled.WithLabelValues(string(outcome)).Inc()
	m.fetchDuration.Observe(duration.Seconds())
	switch outcome {
	case FetchOutcomeCommitted:
		atomic.AddUint64(&m.committedCount, 1)
	case FetchOutcomeFailed:
		atomic.AddUint64(&m.failedCount, 1)
	case FetchOutcomeStale:
		atomic.AddUint64(&m.staleCount, 1)
	}
}

// SessionOpened bumps the active sessions gauge.
func (m *MetricsService) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
	atomic.AddInt64(&m.sessionCount, 1)
}

// SessionClosed lowers the active sessions gauge.
func (m *MetricsService) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
	atomic.AddInt64(&m.sessionCount, -1)
}

// ObserveAuditWrite counts one audit trail write.
func (m *MetricsService) ObserveAuditWrite(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.auditWrites.WithLabelValues(result).Inc()
}

// Snapshot returns aggregated metrics suitable for the summary endpoint.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		FetchesDispatched:        atomic.LoadUint64(&m.dispatchedCount),
		FetchesCommitted:         atomic.LoadUint64(&m.committedCount),
		FetchesFailed:            atomic.LoadUint64(&m.failedCount),
		FetchesStale:             atomic.LoadUint64(&m.staleCount),
		ActiveSessions:           atomic.LoadInt64(&m.sessionCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
