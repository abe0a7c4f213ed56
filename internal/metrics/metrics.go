// Package metrics exposes Prometheus instrumentation for the query cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeDiscarded = "discarded"
)

// Metrics holds the counters recorded by the query cache.
type Metrics struct {
	// CacheHits counts reads served from the store without a fetch.
	CacheHits prometheus.Counter

	// CacheMisses counts reads that had to issue a fetch.
	CacheMisses prometheus.Counter

	// Fetches counts completed fetches by outcome: success, error, or
	// discarded when a superseding request already landed.
	Fetches *prometheus.CounterVec

	// Invalidations counts cache keys marked stale or refetched.
	Invalidations prometheus.Counter
}

// New registers the cache counters with reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "erpkit_cache_hits_total",
			Help: "Reads served from the query cache without a fetch.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "erpkit_cache_misses_total",
			Help: "Reads that issued a fetch against the backend.",
		}),
		Fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "erpkit_cache_fetches_total",
			Help: "Completed fetches by outcome.",
		}, []string{"outcome"}),
		Invalidations: factory.NewCounter(prometheus.CounterOpts{
			Name: "erpkit_cache_invalidations_total",
			Help: "Cache entries invalidated.",
		}),
	}
}

// Nop returns metrics bound to a private registry, for callers that do not
// export instrumentation.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
