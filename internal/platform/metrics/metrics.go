package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Methods are
// nil-safe so tests can pass a nil *Metrics without registering anything.
type Metrics struct {
	AgenciesImported  prometheus.Counter
	RegulationsSynced prometheus.Counter
	FetchOutcomes     *prometheus.CounterVec
	SyncDuration      prometheus.Histogram
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AgenciesImported: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fedreg_agencies_imported_total",
			Help: "Total number of agency rows inserted by the importer",
		}),
		RegulationsSynced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fedreg_regulations_synced_total",
			Help: "Total number of regulation summaries persisted",
		}),
		FetchOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fedreg_document_fetch_outcomes_total",
			Help: "Document fetch attempts by outcome (accepted, rejected, failed)",
		}, []string{"outcome"}),
		SyncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fedreg_sync_duration_seconds",
			Help:    "Duration of per-agency synchronization passes",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fedreg_regulation_cache_hits_total",
			Help: "Regulation list cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fedreg_regulation_cache_misses_total",
			Help: "Regulation list cache misses",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fedreg_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, status).Observe(seconds)
}

func (m *Metrics) RecordAgenciesImported(n int) {
	if m == nil {
		return
	}
	m.AgenciesImported.Add(float64(n))
}

func (m *Metrics) RecordRegulationSynced() {
	if m == nil {
		return
	}
	m.RegulationsSynced.Inc()
}

func (m *Metrics) RecordFetchOutcome(outcome string) {
	if m == nil {
		return
	}
	m.FetchOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSyncDuration(seconds float64) {
	if m == nil {
		return
	}
	m.SyncDuration.Observe(seconds)
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}
