// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// Analysis metrics
	AnalysesCompleted    *prometheus.CounterVec
	AnalysesFailed       *prometheus.CounterVec
	AnalysisLatency      prometheus.Histogram
	StaleCompletions     prometheus.Counter
	HistoryWriteFailures prometheus.Counter
	AnalyzeRateLimited   prometheus.Counter

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Workspace metrics
	ActiveWorkspaces prometheus.Gauge
}

// New creates and registers all metrics on reg. A nil reg uses the default
// registerer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		AnalysesCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_completed_total",
			Help:      "Total number of successful document analyses",
		}, []string{"document_type", "city_tier"}),
		AnalysesFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_failed_total",
			Help:      "Total number of failed document analyses",
		}, []string{"kind"}),
		AnalysisLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent waiting for the analysis service",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
		StaleCompletions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_stale_completions_total",
			Help:      "Analyses that finished after their scan was reset",
		}),
		HistoryWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_write_failures_total",
			Help:      "Analyses kept in memory because persisting them failed",
		}),
		AnalyzeRateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyze_rate_limited_total",
			Help:      "Analyze requests rejected by the per-device rate limit",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "route"}),
		ActiveWorkspaces: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workspaces",
			Help:      "Devices with in-memory scan state",
		}),
	}
}
