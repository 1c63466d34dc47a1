package entitlement

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	invalidates prometheus.Counter
	failClosed  *prometheus.CounterVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "entitlement",
			Name:      "cache_hits_total",
			Help:      "Total number of entitlement cache hits.",
		}, []string{"kind"}),
		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "entitlement",
			Name:      "cache_misses_total",
			Help:      "Total number of entitlement cache misses.",
		}, []string{"kind"}),
		invalidates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "entitlement",
			Name:      "cache_invalidations_total",
			Help:      "Total number of workspace-scoped cache invalidations.",
		}),
		failClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "entitlement",
			Name:      "fail_closed_total",
			Help:      "Total number of lookups resolved by the fail-closed default.",
		}, []string{"kind", "reason"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
