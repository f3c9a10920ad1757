package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(keepAlivePingsTotal, workerTasksTotal) }

var (
	keepAlivePingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keepalive_pings_total",
			Help: "Keep-alive self pings, labeled by result.",
		},
		[]string{"result"}, // 'ok', 'failed'
	)

	workerTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_tasks_total",
			Help: "Background tasks handled by the worker pool.",
		},
		[]string{"status"}, // 'completed', 'failed', 'dropped'
	)
)

func IncKeepAlivePing(result string) {
	keepAlivePingsTotal.WithLabelValues(norm(result)).Inc()
}

func IncWorkerTask(status string) {
	workerTasksTotal.WithLabelValues(norm(status)).Inc()
}
