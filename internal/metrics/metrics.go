package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "basera",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	gatewayCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "basera",
			Name:      "gateway_calls_total",
			Help:      "Model gateway calls by outcome.",
		},
		[]string{"outcome"},
	)

	gatewayLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "basera",
			Name:      "gateway_latency_seconds",
			Help:      "Model gateway round-trip latency.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	toolDispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "basera",
			Name:      "tool_dispatches_total",
			Help:      "Backend tool dispatches by tool name.",
		},
		[]string{"tool"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "basera",
			Name:      "bookings_total",
			Help:      "Booking state changes by status.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, gatewayCalls, gatewayLatency, toolDispatches, bookings)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// ObserveGatewayCall records one model round trip.
func ObserveGatewayCall(ok bool, dur time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	gatewayCalls.WithLabelValues(outcome).Inc()
	gatewayLatency.Observe(dur.Seconds())
}

// IncToolDispatch counts a dispatched tool call.
func IncToolDispatch(tool string) {
	toolDispatches.WithLabelValues(tool).Inc()
}

// IncBooking counts a booking status change.
func IncBooking(status string) {
	bookings.WithLabelValues(status).Inc()
}
