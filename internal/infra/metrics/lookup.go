package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(lookupsTotal, upstreamLatency) }

var (
	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookups_total",
			Help: "UPI and IFSC lookups by outcome.",
		},
		[]string{"kind", "outcome"},
	)

	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Latency of outbound lookup requests.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"service", "status"},
	)
)

func IncLookup(kind, outcome string) {
	lookupsTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
}

// ObserveUpstream records one outbound call. status is the HTTP status code,
// or 0 when the request never produced a response.
func ObserveUpstream(service string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	upstreamLatency.WithLabelValues(norm(service), label).Observe(d.Seconds())
}
