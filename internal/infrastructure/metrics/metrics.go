package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service-level collectors. Registered on a private
// registry so tests can construct isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	ConnectionsActive  prometheus.Gauge
	RoomsActive        prometheus.Gauge
	MessagesAccepted   prometheus.Counter
	AdmissionDecisions *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wayfare_chat_connections_active",
			Help: "Number of live websocket connections.",
		}),
		RoomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wayfare_chat_rooms_active",
			Help: "Number of live chat rooms.",
		}),
		MessagesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "wayfare_chat_messages_accepted_total",
			Help: "Messages persisted and fanned out.",
		}),
		AdmissionDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wayfare_admission_decisions_total",
			Help: "Join request outcomes by decision.",
		}, []string{"decision"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
