package metrics

import (
	"net/http"
	"strconv"
	"time"

	"logistics_manager/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	calculations    *prometheus.CounterVec
	amounts         *prometheus.HistogramVec
	fallbacks       *prometheus.CounterVec
	transitions     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricing_calculations_total",
			Help: "Freight and budget calculations by kind and delivery type.",
		}, []string{"kind", "delivery_type"}),
		amounts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pricing_amount",
			Help:    "Calculated amounts by kind.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"kind"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricing_rate_fallbacks_total",
			Help: "Delivery types that fell back to the standard rate.",
		}, []string{"delivery_type"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shipment_transitions_total",
			Help: "Applied shipment status transitions.",
		}, []string{"from", "to"}),
	}
	m.registry.MustRegister(
		m.requests, m.requestDuration, m.calculations, m.amounts, m.fallbacks, m.transitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

var _ pricing.Observer = (*Metrics)(nil)

func (m *Metrics) FreightCalculated(kind string, deliveryType pricing.DeliveryType, amount float64) {
	m.calculations.WithLabelValues(kind, string(deliveryType)).Inc()
	m.amounts.WithLabelValues(kind).Observe(amount)
}

func (m *Metrics) RateFallback(deliveryType pricing.DeliveryType) {
	m.fallbacks.WithLabelValues(string(deliveryType)).Inc()
}

func (m *Metrics) ShipmentTransition(from, to string) {
	m.transitions.WithLabelValues(from, to).Inc()
}

// Middleware records every request under its route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
