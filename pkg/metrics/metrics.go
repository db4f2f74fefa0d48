// Package metrics exposes the daemon's prometheus collectors.
//
// Collectors live on a private registry handed around by reference, so
// there is no init-time global state and tests can build as many
// instances as they need. All methods are safe on a nil receiver, which
// is how the rest of the code runs with metrics disabled.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one daemon instance.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	routeRebinds    prometheus.Counter
	batchesTotal    prometheus.Counter
	batchSteps      *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry, including the
// standard Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remoted_requests_total",
			Help: "Dispatched requests by method and response code.",
		}, []string{"method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "remoted_request_duration_seconds",
			Help:    "Request handling latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		routeRebinds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "remoted_route_rebinds_total",
			Help: "Route registrations that replaced an existing binding.",
		}),
		batchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "remoted_batches_total",
			Help: "Batch calls executed.",
		}),
		batchSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remoted_batch_steps_total",
			Help: "Batch steps attempted, by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.routeRebinds,
		m.batchesTotal,
		m.batchSteps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one dispatched request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RouteRebound records a registration that replaced an existing binding.
func (m *Metrics) RouteRebound() {
	if m == nil {
		return
	}
	m.routeRebinds.Inc()
}

// BatchStarted records the start of a batch call.
func (m *Metrics) BatchStarted() {
	if m == nil {
		return
	}
	m.batchesTotal.Inc()
}

// BatchStep records one attempted batch step.
func (m *Metrics) BatchStep(succeeded bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !succeeded {
		outcome = "failed"
	}
	m.batchSteps.WithLabelValues(outcome).Inc()
}
