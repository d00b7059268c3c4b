package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	Registry = prometheus.NewRegistry()

	MessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tumult",
			Name:      "messages_received_total",
			Help:      "Envelopes read from stdin, by payload type.",
		},
		[]string{"type"},
	)

	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tumult",
			Name:      "messages_sent_total",
			Help:      "Envelopes written to stdout, by payload type.",
		},
		[]string{"type"},
	)

	InjectedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tumult",
			Name:      "injected_events_total",
			Help:      "Timer and other injected events dispatched to the handler.",
		},
	)

	// ---- Broadcast ----
	GossipValues = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tumult",
			Name:      "gossip_values_total",
			Help:      "Values carried in outgoing gossip, split into new and redundant resends.",
		},
		[]string{"kind"},
	)

	KnownValues = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tumult",
			Name:      "known_values",
			Help:      "Distinct broadcast values held by this node.",
		},
	)
)

func init() {
	Registry.MustRegister(MessagesReceived, MessagesSent, InjectedEvents, GossipValues, KnownValues)
}

// MetricsHandler exposes /metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr in the background. Stdout belongs to the
// protocol, so this is the only way to look at a running node's counters.
func Serve(addr string, log *logrus.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	go func() {
		log.WithField("addr", addr).Info("Serving metrics")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("Metrics endpoint stopped")
		}
	}()
}
