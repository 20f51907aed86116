// Package prometheus provides a Prometheus implementation
// of [contentcache.Metrics].
package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	contentcache "github.com/djdv/go-contentcache"
)

// cacheMetrics implements contentcache.Metrics using Prometheus.
type cacheMetrics struct {
	hits, misses,
	rejected,
	promotions, demotions, renewals prometheus.Counter

	stores        *prometheus.CounterVec
	evictions     *prometheus.CounterVec
	storeFailures *prometheus.CounterVec
	entries       *prometheus.GaugeVec
}

// NewMetrics creates the cache collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) contentcache.Metrics {
	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentcache_hits_total",
			Help: "Total number of Get calls that found their key",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentcache_misses_total",
			Help: "Total number of Get calls that did not find their key",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentcache_rejected_total",
			Help: "Total number of new keys dropped for lack of capacity",
		}),
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentcache_promotions_total",
			Help: "Total number of entries moved from pending to retrieved",
		}),
		demotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentcache_demotions_total",
			Help: "Total number of retrieved entries stored again",
		}),
		renewals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentcache_renewals_total",
			Help: "Total number of stale entries renewed by a hit",
		}),

		stores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentcache_stores_total",
			Help: "Total number of Put calls that stored content",
		}, []string{"update"}),

		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentcache_evictions_total",
			Help: "Total number of evicted entries by selecting tier",
		}, []string{"tier"}),

		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentcache_store_failures_total",
			Help: "Total number of content store errors by operation",
		}, []string{"op"}),

		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "contentcache_entries",
			Help: "Current number of entries by list",
		}, []string{"list"}),
	}

	reg.MustRegister(
		m.hits,
		m.misses,
		m.rejected,
		m.promotions,
		m.demotions,
		m.renewals,
		m.stores,
		m.evictions,
		m.storeFailures,
		m.entries,
	)

	return m
}

func (m *cacheMetrics) Hit()      { m.hits.Inc() }
func (m *cacheMetrics) Miss()     { m.misses.Inc() }
func (m *cacheMetrics) Rejected() { m.rejected.Inc() }
func (m *cacheMetrics) Promoted() { m.promotions.Inc() }
func (m *cacheMetrics) Demoted()  { m.demotions.Inc() }
func (m *cacheMetrics) Renewed()  { m.renewals.Inc() }

func (m *cacheMetrics) Stored(update bool) {
	m.stores.WithLabelValues(strconv.FormatBool(update)).Inc()
}

func (m *cacheMetrics) Evicted(tier contentcache.Tier) {
	m.evictions.WithLabelValues(tier.String()).Inc()
}

func (m *cacheMetrics) StoreFailed(op string) {
	m.storeFailures.WithLabelValues(op).Inc()
}

func (m *cacheMetrics) Entries(pending, retrieved int) {
	m.entries.WithLabelValues("pending").Set(float64(pending))
	m.entries.WithLabelValues("retrieved").Set(float64(retrieved))
}

var _ contentcache.Metrics = (*cacheMetrics)(nil)
