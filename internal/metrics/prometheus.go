// Package metrics provides Prometheus metrics for the pipeline, draft actions and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every collector on its own registry.
// A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Pipeline
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	playersValued *prometheus.GaugeVec
	modelR2       prometheus.Gauge
	trainingRows  prometheus.Gauge

	// Draft board
	draftActions *prometheus.CounterVec

	// Backups
	backups *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager with its own registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "draftboard",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(collectors.NewGoCollector())
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Duration of pipeline stages",
		Buckets:   m.histogramBuckets,
	}, []string{"stage"})

	m.stageErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "stage_errors_total",
		Help:      "Pipeline stages that failed",
	}, []string{"stage"})

	m.playersValued = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "valuation",
		Name:      "players_valued",
		Help:      "Players with a projection in the last valuation run",
	}, []string{"population"})

	m.modelR2 = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "pricing",
		Name:      "model_r2",
		Help:      "Training R² of the current price model",
	})

	m.trainingRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "pricing",
		Name:      "training_rows",
		Help:      "Matched rows used to fit the current price model",
	})

	m.draftActions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "draft",
		Name:      "actions_total",
		Help:      "Draft and undo actions",
	}, []string{"action"})

	m.backups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "backup",
		Name:      "runs_total",
		Help:      "Backup runs by result",
	}, []string{"result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

// ObserveStage records a pipeline stage duration, and its failure when err is non-nil
func (m *Manager) ObserveStage(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

// SetPlayersValued records the projected pool size of a population
func (m *Manager) SetPlayersValued(population string, n int) {
	if m == nil {
		return
	}
	m.playersValued.WithLabelValues(population).Set(float64(n))
}

// SetModelFit records the latest training fit
func (m *Manager) SetModelFit(r2 float64, rows int) {
	if m == nil {
		return
	}
	m.modelR2.Set(r2)
	m.trainingRows.Set(float64(rows))
}

// RecordDraftAction counts a draft or undo
func (m *Manager) RecordDraftAction(action string) {
	if m == nil {
		return
	}
	m.draftActions.WithLabelValues(action).Inc()
}

// RecordBackup counts a backup run
func (m *Manager) RecordBackup(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.backups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request
func (m *Manager) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// Registry returns the registry backing this manager
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
