// Package metrics exposes Prometheus metrics for the analysis API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freshsense/freshsense/pkg/types"
)

// Metric names, shared with clients that scrape /metrics.
const (
	AnalysesTotal   = "freshsense_analyses_total"
	LEDTotal        = "freshsense_led_total"
	RequestsTotal   = "freshsense_http_requests_total"
	RequestDuration = "freshsense_http_request_duration_seconds"
)

// Recorder owns a private registry so several servers (and tests) can run in
// one process without colliding on the default registry.
type Recorder struct {
	reg *prometheus.Registry

	analyses *prometheus.CounterVec
	leds     *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New creates a Recorder with all collectors registered, plus the Go runtime
// and process collectors.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: AnalysesTotal,
			Help: "Completed spoilage analyses by food status.",
		}, []string{"food_status"}),
		leds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LEDTotal,
			Help: "LED colors assigned, by gas and color.",
		}, []string{"gas", "color"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RequestsTotal,
			Help: "HTTP requests by route and status code.",
		}, []string{"path", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    RequestDuration,
			Help:    "HTTP request latency by route.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"path"}),
	}
	r.reg.MustRegister(
		r.analyses, r.leds, r.requests, r.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	// Pre-create both status series so dashboards see zeros before traffic.
	r.analyses.WithLabelValues(string(types.Fresh))
	r.analyses.WithLabelValues(string(types.Spoiled))
	return r
}

// ObserveResult counts one classification and its LED colors.
func (r *Recorder) ObserveResult(res types.Result) {
	r.analyses.WithLabelValues(string(res.Status)).Inc()
	for g, c := range res.LEDs {
		r.leds.WithLabelValues(string(g), string(c)).Inc()
	}
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(path string, code int, d time.Duration) {
	r.requests.WithLabelValues(path, strconv.Itoa(code)).Inc()
	r.latency.WithLabelValues(path).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}
