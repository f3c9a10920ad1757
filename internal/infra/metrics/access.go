package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(accessDecisionsTotal, allowListSize) }

var (
	accessDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "Authorization decisions per command.",
		},
		[]string{"command", "status"}, // status: 'authorized', 'unauthorized'
	)

	allowListSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "allowlist_users",
			Help: "Number of user IDs currently on the allow-list.",
		},
	)
)

func IncAccessDecision(command, status string) {
	accessDecisionsTotal.WithLabelValues(norm(command), norm(status)).Inc()
}

func SetAllowListSize(n int) {
	allowListSize.Set(float64(n))
}
