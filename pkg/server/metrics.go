package server

import (
	"net/http"
	"time"

	"github.com/irctrakz/systatd/pkg/core"
	"github.com/irctrakz/systatd/pkg/systat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's self-instrumentation on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	lookups  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "systatd",
			Name:      "http_requests_total",
			Help:      "Requests served per location, method and status code.",
		}, []string{"location", "method", "code"}),
		lookups: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "systatd",
			Name:      "netif_lookup_duration_seconds",
			Help:      "Time spent enumerating interfaces per lookup.",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .05, .1},
		}, []string{"interface", "result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// timedLookuper observes the latency and outcome of every lookup.
type timedLookuper struct {
	next    systat.Lookuper
	lookups *prometheus.HistogramVec
}

func (t timedLookuper) Lookup(q core.InterfaceQuery) (uint64, error) {
	start := time.Now()
	v, err := t.next.Lookup(q)
	result := "ok"
	switch systat.StatusFor(err) {
	case http.StatusNotFound:
		result = "not_found"
	case http.StatusInternalServerError:
		result = "error"
	}
	t.lookups.WithLabelValues(q.Name, result).Observe(time.Since(start).Seconds())
	return v, err
}

// InstrumentLookuper wraps l so its lookups are observed.
func (m *Metrics) InstrumentLookuper(l systat.Lookuper) systat.Lookuper {
	return timedLookuper{next: l, lookups: m.lookups}
}
