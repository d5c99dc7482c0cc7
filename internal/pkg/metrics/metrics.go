// Package metrics exposes the prometheus instrumentation for the dispatch
// engine. One Metrics instance owns its own registry so tests can create
// isolated instances without collisions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all dispatch engine metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Optimization metrics
	ClustersBuilt    prometheus.Counter
	RoutesBuilt      *prometheus.CounterVec
	OrdersAssigned   prometheus.Counter
	OrdersUnassigned prometheus.Counter

	// Routing gateway metrics
	GatewayCalls        *prometheus.CounterVec
	GatewayCallDuration prometheus.Histogram
	CircuitBreakerState prometheus.Gauge
	CircuitBreakerTrips prometheus.Counter

	// Adjustment engine metrics
	AdjustmentsProcessed *prometheus.CounterVec
	AdjustmentDuration   *prometheus.HistogramVec
	AdjustmentQueueDepth prometheus.Gauge
}

// Gateway call outcome label values.
const (
	GatewayOutcomeSuccess  = "success"
	GatewayOutcomeCacheHit = "cache_hit"
	GatewayOutcomeFallback = "fallback"
)

// New creates a Metrics instance backed by a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{registry: registry}

	m.ClustersBuilt = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      "clusters_built_total",
		Help:      "Total number of geographic clusters produced",
	})

	m.RoutesBuilt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      "routes_built_total",
		Help:      "Total number of routes built",
	}, []string{"mode"})

	m.OrdersAssigned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      "orders_assigned_total",
		Help:      "Total number of orders assigned to routes",
	})

	m.OrdersUnassigned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      "orders_unassigned_total",
		Help:      "Total number of orders no vehicle could absorb",
	})

	m.GatewayCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      "routing_gateway_calls_total",
		Help:      "Routing gateway calls by outcome and fallback reason",
	}, []string{"outcome", "reason"})

	m.GatewayCallDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dispatch",
		Name:      "routing_gateway_call_duration_seconds",
		Help:      "Routing provider call duration in seconds",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	m.CircuitBreakerState = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dispatch",
		Name:      "routing_circuit_breaker_state",
		Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	})

	m.CircuitBreakerTrips = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      "routing_circuit_breaker_trips_total",
		Help:      "Total number of circuit breaker open transitions",
	})

	m.AdjustmentsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dispatch",
		Name:      "adjustments_processed_total",
		Help:      "Adjustment requests processed by type and outcome",
	}, []string{"type", "outcome"})

	m.AdjustmentDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dispatch",
		Name:      "adjustment_duration_seconds",
		Help:      "Adjustment processing duration in seconds",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"type"})

	m.AdjustmentQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dispatch",
		Name:      "adjustment_queue_depth",
		Help:      "Number of adjustment requests waiting in the queue",
	})

	registry.MustRegister(
		m.ClustersBuilt,
		m.RoutesBuilt,
		m.OrdersAssigned,
		m.OrdersUnassigned,
		m.GatewayCalls,
		m.GatewayCallDuration,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
		m.AdjustmentsProcessed,
		m.AdjustmentDuration,
		m.AdjustmentQueueDepth,
	)

	return m
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveGatewayCall records one provider call outcome with its duration.
func (m *Metrics) ObserveGatewayCall(outcome, reason string, elapsed time.Duration) {
	m.GatewayCalls.WithLabelValues(outcome, reason).Inc()
	m.GatewayCallDuration.Observe(elapsed.Seconds())
}
