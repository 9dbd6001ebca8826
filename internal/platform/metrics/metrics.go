// Package metrics exposes Prometheus instrumentation for the HTTP API and
// the inference relay.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric the server records.
type Collector struct {
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
	inferenceRequests *prometheus.CounterVec
	inferenceLatency  prometheus.Histogram
	signins           *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dentalcare_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dentalcare_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inferenceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dentalcare_inference_requests_total",
			Help: "Chat completion calls by outcome.",
		}, []string{"outcome"}),
		inferenceLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dentalcare_inference_duration_seconds",
			Help:    "Chat completion call latency.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90, 120},
		}),
		signins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dentalcare_signins_total",
			Help: "Signin attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.inferenceRequests,
		c.inferenceLatency,
		c.signins,
	)
	return c
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordInference records one chat completion call. outcome is "ok",
// "timeout", "transport_error" or "upstream_status".
func (c *Collector) RecordInference(outcome string, d time.Duration) {
	c.inferenceRequests.WithLabelValues(outcome).Inc()
	c.inferenceLatency.Observe(d.Seconds())
}

func (c *Collector) RecordSignin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.signins.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
