package sentiment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sentiment_classifications_total",
		Help: "Sentiment classifications by provider and outcome (success, fallback, degraded)",
	},
	[]string{"provider", "outcome"},
)

func recordOutcome(provider, outcome string) {
	classificationsTotal.WithLabelValues(provider, outcome).Inc()
}
