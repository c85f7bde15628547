package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every Prometheus metric the service exports. Each
// collector owns its registry, so tests can create as many as they like.
// All recording methods are safe on a nil receiver.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	BusRequests *prometheus.CounterVec
	BusDuration *prometheus.HistogramVec

	Regenerations        *prometheus.CounterVec
	RegenerationDuration prometheus.Histogram
	RegeneratedBullets   prometheus.Gauge
	InvalidatedBullets   prometheus.Counter

	EventsPublished *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BusRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_requests_total",
			Help:      "Commands and queries dispatched, by outcome",
		}, []string{"kind", "name", "status"}),
		BusDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bus_request_duration_seconds",
			Help:      "Command and query handling time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "name"}),
		Regenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regenerations_total",
			Help:      "Summary regeneration runs, by outcome",
		}, []string{"status"}),
		RegenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "regeneration_duration_seconds",
			Help:      "Wall time of a full regeneration run",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		RegeneratedBullets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regenerated_bullet_points",
			Help:      "Bullet points produced by the most recent regeneration",
		}),
		InvalidatedBullets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalidated_bullet_points_total",
			Help:      "Bullet points marked invalid, including propagated ones",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to the publisher, by outcome",
		}, []string{"status"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests, c.HTTPDuration,
		c.BusRequests, c.BusDuration,
		c.Regenerations, c.RegenerationDuration, c.RegeneratedBullets, c.InvalidatedBullets,
		c.EventsPublished,
	)
	return c
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordBusRequest records one command or query. kind is "command" or "query".
func (c *Collector) RecordBusRequest(kind, name string, err error, d time.Duration) {
	if c == nil {
		return
	}
	c.BusRequests.WithLabelValues(kind, name, outcome(err)).Inc()
	c.BusDuration.WithLabelValues(kind, name).Observe(d.Seconds())
}

func (c *Collector) RecordRegeneration(bullets int, err error, d time.Duration) {
	if c == nil {
		return
	}
	c.Regenerations.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	c.RegenerationDuration.Observe(d.Seconds())
	c.RegeneratedBullets.Set(float64(bullets))
}

func (c *Collector) RecordInvalidation(count int) {
	if c == nil {
		return
	}
	c.InvalidatedBullets.Add(float64(count))
}

func (c *Collector) RecordEventPublish(count int, err error) {
	if c == nil {
		return
	}
	c.EventsPublished.WithLabelValues(outcome(err)).Add(float64(count))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
