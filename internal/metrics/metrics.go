// Package metrics exposes Prometheus collectors for the console's outgoing
// storefront traffic, health probes and mutation outcomes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "carrry_admin"

// Metrics holds the console's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	probes    *prometheus.CounterVec
	mutations *prometheus.CounterVec
	stale     prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storefront_requests_total",
			Help:      "Requests issued to the storefront API by method and status class.",
		}, []string{"method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storefront_request_seconds",
			Help:      "Round-trip time of storefront API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_probes_total",
			Help:      "Backend reachability probes by outcome.",
		}, []string{"outcome"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Mutations by resource, operation and outcome.",
		}, []string{"resource", "operation", "outcome"}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_loads_discarded_total",
			Help:      "List responses dropped because a newer load was issued.",
		}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.probes, m.mutations, m.stale)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records one storefront round trip. status 0 means the
// request never got a response.
func (m *Metrics) ObserveRequest(method string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, statusClass(status)).Inc()
	m.latency.WithLabelValues(method).Observe(took.Seconds())
}

// ObserveProbe records a health probe outcome.
func (m *Metrics) ObserveProbe(reachable bool) {
	if m == nil {
		return
	}
	outcome := "reachable"
	if !reachable {
		outcome = "unreachable"
	}
	m.probes.WithLabelValues(outcome).Inc()
}

// ObserveMutation records a mutation outcome ("success", "failure", "invalid").
func (m *Metrics) ObserveMutation(resource, operation, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(resource, operation, outcome).Inc()
}

// ObserveStaleLoad counts a discarded out-of-order list response.
func (m *Metrics) ObserveStaleLoad() {
	if m == nil {
		return
	}
	m.stale.Inc()
}

func statusClass(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
