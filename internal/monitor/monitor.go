// Package monitor exposes prometheus metrics for the table service.
package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor bundles the service's prometheus collectors. A nil *Monitor is a
// valid no-op receiver so tests and minimal deployments can skip metrics.
type Monitor struct {
	connections  prometheus.Gauge
	roomsCreated prometheus.Counter
	actions      *prometheus.CounterVec
	errors       *prometheus.CounterVec
}

// New registers the collectors on the default registry.
func New(namespace string) *Monitor {
	m := &Monitor{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Number of open websocket connections",
		}),
		roomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Total number of rooms created",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Total number of applied player actions",
		}, []string{"action"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Total number of rejected client requests",
		}, []string{"code"}),
	}

	prometheus.MustRegister(
		m.connections,
		m.roomsCreated,
		m.actions,
		m.errors,
	)

	return m
}

// Serve exposes /metrics on its own listener.
func (m *Monitor) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(addr, mux)
}

func (m *Monitor) ConnOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Monitor) ConnClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *Monitor) RoomCreated() {
	if m == nil {
		return
	}
	m.roomsCreated.Inc()
}

func (m *Monitor) ActionApplied(action string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(action).Inc()
}

func (m *Monitor) RequestError(code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(code).Inc()
}
