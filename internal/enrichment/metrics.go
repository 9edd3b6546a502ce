package enrichment

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// attemptsTotal counts enrichment attempts by outcome reason.
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_import_enrichment_attempts_total",
		Help: "Total number of enrichment attempts by outcome",
	}, []string{"reason"})

	// lookupDuration tracks registry lookup latency.
	lookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_import_enrichment_lookup_duration_seconds",
		Help:    "Time taken by product registry lookups",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
	})

	// cacheRequests counts registry cache hits and misses.
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_import_enrichment_cache_requests_total",
		Help: "Enrichment cache lookups by result",
	}, []string{"result"}) // result: hit, miss

	// breakerState exposes the circuit breaker state (0 closed, 1 open, 2 half-open).
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "catalog_import_enrichment_circuit_state",
		Help: "Circuit breaker state by breaker name",
	}, []string{"breaker"})
)

func recordOutcome(reason Reason) {
	attemptsTotal.WithLabelValues(string(reason)).Inc()
}

func recordLookup(d time.Duration) {
	lookupDuration.Observe(d.Seconds())
}

func recordCache(hit bool) {
	if hit {
		cacheRequests.WithLabelValues("hit").Inc()
		return
	}
	cacheRequests.WithLabelValues("miss").Inc()
}

func recordBreakerState(name string, state CircuitBreakerState) {
	breakerState.WithLabelValues(name).Set(float64(state))
}
