// Package metrics exposes the server's Prometheus instrumentation surface
// over HTTP. The teacher's go.mod already pulls in client_golang as an
// indirect dependency (via protoactor-go's own metrics and the unused
// OpenTelemetry Prometheus exporter); this package is what actually wires
// it in, on the admin HTTP port spec.md section 4.9 implies every
// long-lived subsystem needs observability for.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the counters and gauges the lobby and room layers update
// as the server runs.
type Registry struct {
	registry *prometheus.Registry

	ActiveConnections prometheus.Gauge
	ActiveRooms       prometheus.Gauge
	ActiveSessions    prometheus.Gauge

	ConnectionsAccepted prometheus.Counter
	ConnectionsRejected *prometheus.CounterVec

	GamesFinished *prometheus.CounterVec
}

// New registers every metric against a fresh prometheus.Registry, so tests
// can construct independent instances without colliding on the default
// global registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Registry{
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "gomoku",
			Name:      "active_connections",
			Help:      "Number of currently open client connections.",
		}),
		ActiveRooms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "gomoku",
			Name:      "active_rooms",
			Help:      "Number of rooms currently registered in the lobby.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "gomoku",
			Name:      "active_sessions",
			Help:      "Number of rooms currently mid-match.",
		}),
		ConnectionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gomoku",
			Name:      "connections_accepted_total",
			Help:      "Total TCP connections accepted.",
		}),
		ConnectionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gomoku",
			Name:      "connections_rejected_total",
			Help:      "Total connections rejected at admission, by reason.",
		}, []string{"reason"}),
		GamesFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gomoku",
			Name:      "games_finished_total",
			Help:      "Total finished matches, by result kind.",
		}, []string{"result"}),
	}
	r.registry = reg
	return r
}

func (r *Registry) handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve runs an HTTP server on addr exposing /metrics until the process
// exits or the listener fails. Intended to run in its own goroutine from
// cmd/server.
func (r *Registry) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.handler())
	return http.ListenAndServe(addr, mux)
}
