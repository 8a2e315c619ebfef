// Package metrics holds the Prometheus instruments shared across the
// collection pipeline, providers, and the dashboard server.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	// CollectDuration tracks full pipeline runs.
	CollectDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fbintel_collect_duration_seconds",
		Help:    "Duration of collection pipeline runs in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	})

	// MatchesScraped counts standardized match rows by source.
	MatchesScraped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbintel_matches_scraped_total",
		Help: "Total match rows collected by source",
	}, []string{"source"})

	// ProviderErrors counts provider failures by reason.
	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbintel_provider_errors_total",
		Help: "Total provider errors by provider and reason",
	}, []string{"provider", "reason"})

	// CacheHits and CacheMisses track the response cache by provider.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbintel_cache_hits_total",
		Help: "Total response cache hits by provider",
	}, []string{"provider"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbintel_cache_misses_total",
		Help: "Total response cache misses by provider",
	}, []string{"provider"})

	// ActiveCollections gauges in-flight pipeline runs.
	ActiveCollections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fbintel_active_collections",
		Help: "Number of collection runs currently in flight",
	})

	// HTTPDuration tracks dashboard request latency.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fbintel_http_request_duration_seconds",
		Help:    "Dashboard HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"path", "method"})
)

// CounterValue reads the current value of a labelled counter. Used by the
// status command and tests to snapshot instrument state.
func CounterValue(vec *prometheus.CounterVec, labels ...string) (float64, error) {
	c, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, fmt.Errorf("get metric: %w", err)
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0, fmt.Errorf("write metric: %w", err)
	}
	return m.GetCounter().GetValue(), nil
}
