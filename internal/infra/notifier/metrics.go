package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mention_alerts_total",
		Help: "Mention alert deliveries by channel and status (success, failure, rate_limited)",
	},
	[]string{"channel", "status"},
)

func recordNotification(channel, status string) {
	notificationsTotal.WithLabelValues(channel, status).Inc()
}
