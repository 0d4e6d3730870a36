package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	fetches      *prometheus.CounterVec
	fillsFetched *prometheus.CounterVec
	enrichments  prometheus.Counter
	undatedFills prometheus.Counter
	errorsTotal  *prometheus.CounterVec
	priceLookups *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astropull_fetches_total",
				Help: "Successful trade history fetches",
			},
			[]string{"venue"},
		),
		fillsFetched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astropull_fills_fetched_total",
				Help: "Fill records returned by venues",
			},
			[]string{"venue"},
		),
		enrichments: f.NewCounter(prometheus.CounterOpts{
			Name: "astropull_enrichments_total",
			Help: "Successful enrich runs",
		}),
		undatedFills: f.NewCounter(prometheus.CounterOpts{
			Name: "astropull_undated_fills_total",
			Help: "Enriched fills whose timestamp could not be parsed",
		}),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astropull_errors_total",
				Help: "Errors by kind",
			},
			[]string{"kind"},
		),
		priceLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astropull_price_lookups_total",
				Help: "Historical price lookups by cache result",
			},
			[]string{"result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "astropull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch records a successful fetch and its row count.
func (r *Recorder) RecordFetch(venue string, fills int) {
	r.fetches.WithLabelValues(venue).Inc()
	r.fillsFetched.WithLabelValues(venue).Add(float64(fills))
}

// RecordEnrich records a successful enrichment.
func (r *Recorder) RecordEnrich(fills, undated int) {
	r.enrichments.Inc()
	r.undatedFills.Add(float64(undated))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordPriceLookup records a price lookup as hit, miss, or error.
func (r *Recorder) RecordPriceLookup(result string) {
	r.priceLookups.WithLabelValues(result).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
