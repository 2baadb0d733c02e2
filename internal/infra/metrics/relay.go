package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		relayRequestsTotal,
		relayLatencyMs,
		relayInFlight,
	)
}

var (
	relayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "Workflow relay calls by outcome.",
		},
		[]string{"outcome"}, // ok, not_configured, timeout, unreachable, http_error, invalid_body, busy
	)

	relayLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_latency_ms",
			Help:    "Workflow relay latency distribution in milliseconds.",
			Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000},
		},
		[]string{"outcome"},
	)

	relayInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_in_flight",
			Help: "Relay calls currently holding a concurrency slot.",
		},
	)
)

func ObserveRelay(outcome string, latencyMs int64) {
	relayRequestsTotal.WithLabelValues(norm(outcome)).Inc()
	relayLatencyMs.WithLabelValues(norm(outcome)).Observe(float64(latencyMs))
}

func AddRelayInFlight(delta float64) {
	relayInFlight.Add(delta)
}
