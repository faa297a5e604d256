// Package metrics exposes Prometheus metrics for document retrieval.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docuscribe"

// Fetch results.
const (
	ResultOK           = "ok"
	ResultInvalidRange = "invalid_range"
	ResultBadRequest   = "bad_request"
	ResultNotFound     = "not_found"
	ResultError        = "error"
)

// Recorder owns a private registry so tests and multiple servers never
// collide on the global default registerer.
type Recorder struct {
	registry *prometheus.Registry

	// fetches counts fetch_doc_content calls.
	// Labels: mode (index, single, multi), result
	fetches *prometheus.CounterVec

	// returnedWords tracks how many words each fetch returned.
	// Labels: mode
	returnedWords *prometheus.HistogramVec

	// mergedRanges tracks the number of ranges left after merging.
	mergedRanges prometheus.Histogram

	// listings counts list_all_docs calls.
	// Labels: result
	listings *prometheus.CounterVec

	// requestDuration measures HTTP handling time.
	// Labels: method, route, status
	requestDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "fetches_total",
			Help:      "Total document fetches by mode and result",
		}, []string{"mode", "result"}),
		returnedWords: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "returned_words",
			Help:      "Words returned per successful fetch",
			Buckets:   []float64{0, 10, 100, 500, 1000, 5000, 10000, 25000, 50000},
		}, []string{"mode"}),
		mergedRanges: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "merged_ranges",
			Help:      "Ranges remaining after merging in multi-range fetches",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		listings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "listings_total",
			Help:      "Total document listings by result",
		}, []string{"result"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Fetch records a fetch outcome. words is only observed for ResultOK.
func (r *Recorder) Fetch(mode, result string, words int) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(mode, result).Inc()
	if result == ResultOK {
		r.returnedWords.WithLabelValues(mode).Observe(float64(words))
	}
}

// MergedRanges records the merged range count of a multi-range fetch.
func (r *Recorder) MergedRanges(n int) {
	if r == nil {
		return
	}
	r.mergedRanges.Observe(float64(n))
}

// Listing records a list outcome.
func (r *Recorder) Listing(result string) {
	if r == nil {
		return
	}
	r.listings.WithLabelValues(result).Inc()
}

// Request records one handled HTTP request.
func (r *Recorder) Request(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
