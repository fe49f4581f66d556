// Package monitoring exposes Prometheus metrics for blob fetches, the chunk
// cache, and area reconstruction.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "postcode_lookup"

// Fetch outcomes recorded by ObserveFetch.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the collectors shared by the lookup components. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	BlobFetches       *prometheus.CounterVec // labels: outcome={ok,not_found,error}
	BlobFetchDuration prometheus.Histogram
	CacheLookups      *prometheus.CounterVec // labels: result={hit,miss}
	CacheEntries      prometheus.Gauge
	AreaRuns          prometheus.Counter
	AreaChunksLoaded  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BlobFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_fetch_total",
			Help:      "Blob fetches by outcome.",
		}, []string{"outcome"}),
		BlobFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "blob_fetch_duration_seconds",
			Help:      "Duration of a single blob fetch.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_cache_lookups_total",
			Help:      "Chunk cache lookups by result.",
		}, []string{"result"}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunk_cache_entries",
			Help:      "Chunks currently resident in the cache.",
		}),
		AreaRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "area_reconstructions_total",
			Help:      "Area reconstructions performed.",
		}),
		AreaChunksLoaded: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "area_chunks_loaded",
			Help:      "Speculative chunk loads that succeeded per reconstruction.",
			Buckets:   []float64{0, 1, 5, 10, 20, 40, 60, 80, 100},
		}),
	}

	reg.MustRegister(
		m.BlobFetches,
		m.BlobFetchDuration,
		m.CacheLookups,
		m.CacheEntries,
		m.AreaRuns,
		m.AreaChunksLoaded,
	)

	return m
}

// ObserveFetch records one blob fetch.
func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.BlobFetches.WithLabelValues(outcome).Inc()
	m.BlobFetchDuration.Observe(d.Seconds())
}

// CacheLookup records a chunk cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// SetCacheEntries records the current cache size.
func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}

// ObserveArea records one area reconstruction.
func (m *Metrics) ObserveArea(loaded int) {
	if m == nil {
		return
	}
	m.AreaRuns.Inc()
	m.AreaChunksLoaded.Observe(float64(loaded))
}
