package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_messages_total",
			Help: "Inbound messages routed, labelled by the state that handled them.",
		},
		[]string{"state"},
	)

	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_transitions_total",
			Help: "State transitions persisted, by source and destination state.",
		},
		[]string{"from", "to"},
	)

	resetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dialogue_resets_total",
			Help: "Dialogue records removed via /reset.",
		},
	)

	storeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_store_errors_total",
			Help: "Durable store failures by operation.",
		},
		[]string{"op"},
	)

	handlerLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dialogue_handler_latency_ms",
			Help:    "Handler latency distribution in milliseconds.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"state", "success"},
	)

	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_cache_requests_total",
			Help: "Profile cache lookups by entity and outcome (hit/miss).",
		},
		[]string{"entity", "outcome"},
	)
)

func init() {
	register(messagesTotal, transitionsTotal, resetsTotal, storeErrorsTotal,
		handlerLatencyMs, cacheRequestsTotal)
}

func IncMessage(state string) {
	messagesTotal.WithLabelValues(state).Inc()
}

func IncTransition(from, to string) {
	transitionsTotal.WithLabelValues(from, to).Inc()
}

func IncReset() {
	resetsTotal.Inc()
}

func IncStoreError(op string) {
	storeErrorsTotal.WithLabelValues(op).Inc()
}

func ObserveHandlerLatency(state string, ms float64, success bool) {
	handlerLatencyMs.WithLabelValues(state, strconv.FormatBool(success)).Observe(ms)
}

func IncCacheRequest(entity, outcome string) {
	cacheRequestsTotal.WithLabelValues(entity, outcome).Inc()
}
