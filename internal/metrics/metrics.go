// Package metrics exposes booking counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eticket_booking_transitions_total",
		Help: "Booking state machine events, by event and resulting phase.",
	}, []string{"event", "from", "to"})

	rejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eticket_booking_rejected_events_total",
		Help: "Booking events rejected by the state machine, by event and error kind.",
	}, []string{"event", "kind"})

	stale = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eticket_booking_stale_responses_total",
		Help: "Backend responses dropped because the selection moved on.",
	}, []string{"event"})

	ticketsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eticket_tickets_issued_total",
		Help: "Tickets issued through the gateway.",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eticket_sessions_active",
		Help: "Booking sessions currently held in memory.",
	})
)

func ObserveTransition(event, from, to string) {
	transitions.WithLabelValues(event, from, to).Inc()
}

func ObserveRejected(event, kind string) {
	rejected.WithLabelValues(event, kind).Inc()
}

func ObserveStale(event string) {
	stale.WithLabelValues(event).Inc()
}

func TicketIssued() {
	ticketsIssued.Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
