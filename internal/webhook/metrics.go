package webhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultRejected  = "rejected"
	resultMalformed = "malformed"
	resultSkipped   = "skipped"
	resultFailed    = "sync_failed"
	resultSynced    = "synced"
)

var eventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "flocktrack_webhook_events_total",
		Help: "Identity webhook deliveries by processing result",
	},
	[]string{"result"},
)

func observeEvent(result string) {
	eventsTotal.WithLabelValues(result).Inc()
}
