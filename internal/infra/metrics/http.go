package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(httpRequestsTotal) }

var httpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by route pattern and status code.",
	},
	[]string{"route", "code"},
)

func IncHTTPRequest(route string, code int) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
