package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	adviceResolved  *prometheus.CounterVec
	extractDuration prometheus.Observer
	speechDuration  prometheus.Observer
	remindersRaised prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
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

	adviceResolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "advice_resolved_total",
		Help: "Packing advice resolutions by outcome label",
	}, []string{"label", "vacation"})

	extractDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_extraction_duration_seconds",
		Help:    "Duration of vision schedule extraction calls",
		Buckets: []float64{1, 2.5, 5, 10, 20, 45, 90},
	})

	speechDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "speech_synthesis_duration_seconds",
		Help:    "Duration of speech synthesis calls",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30},
	})

	remindersRaised := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backpack_reminders_raised_total",
		Help: "Reminders raised by the background notifier",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, adviceResolved, extractDuration, speechDuration, remindersRaised, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		adviceResolved:  adviceResolved,
		extractDuration: extractDuration,
		speechDuration:  speechDuration,
		remindersRaised: remindersRaised,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordAdvice counts a resolved advice by outcome.
func (m *MetricsService) RecordAdvice(label string, vacation bool) {
	if m == nil {
		return
	}
	m.adviceResolved.WithLabelValues(label, fmt.Sprintf("%t", vacation)).Inc()
}

// ObserveExtraction records one vision extraction call.
func (m *MetricsService) ObserveExtraction(duration time.Duration) {
	if m == nil {
		return
	}
	m.extractDuration.Observe(duration.Seconds())
}

// ObserveSpeech records one speech synthesis call.
func (m *MetricsService) ObserveSpeech(duration time.Duration) {
	if m == nil {
		return
	}
	m.speechDuration.Observe(duration.Seconds())
}

// RecordReminders counts reminders raised by a notifier sweep.
func (m *MetricsService) RecordReminders(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.remindersRaised.Add(float64(count))
}

// RecordCacheLookup counts a cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
