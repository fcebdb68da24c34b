package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gilby125/airport-network/graph"
)

var (
	// GraphVertices is the number of airports in the loaded graph
	GraphVertices = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airport_graph_vertices",
		Help: "Number of airports in the loaded graph",
	})

	GraphRoutes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airport_graph_routes",
		Help: "Number of undirected routes in the loaded graph",
	})
)

var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airport_graph_queries_total",
		Help: "Graph queries by kind and outcome (ok, not_found, invalid, error)",
	}, []string{"query", "outcome"})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "airport_graph_query_duration_seconds",
		Help:    "Time spent answering graph queries",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"query"})
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route template and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route template",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// SetGraphSize records the size of a freshly loaded graph.
func SetGraphSize(g *graph.Graph) {
	GraphVertices.Set(float64(g.Len()))
	GraphRoutes.Set(float64(g.RouteCount()))
}

// Outcome classifies a query error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, graph.ErrNotFound):
		return "not_found"
	case errors.Is(err, graph.ErrInvalidArgument):
		return "invalid"
	default:
		return "error"
	}
}

// ObserveQuery counts a finished query and its latency.
func ObserveQuery(query string, start time.Time, err error) {
	QueriesTotal.WithLabelValues(query, Outcome(err)).Inc()
	QueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
