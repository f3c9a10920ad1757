package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		telegramUpdatesTotal,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands from users.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_total",
			Help: "Updates received from Telegram by delivery mode.",
		},
		[]string{"mode"}, // polling | webhook
	)
)

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncTelegramUpdate(mode string) {
	telegramUpdatesTotal.WithLabelValues(norm(mode)).Inc()
}
