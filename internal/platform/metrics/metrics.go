package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the song board. Each instance
// owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Submissions     *prometheus.CounterVec
	Votes           *prometheus.CounterVec
	StatusChanges   *prometheus.CounterVec
	Removals        prometheus.Counter
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge
}

func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "songboard"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "song_submissions_total",
				Help:      "Song submissions by outcome.",
			},
			[]string{"outcome"},
		),
		Votes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "song_votes_total",
				Help:      "Vote attempts by outcome.",
			},
			[]string{"outcome"},
		),
		StatusChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "song_status_changes_total",
				Help:      "Songs moved to a status, by status.",
			},
			[]string{"status"},
		),
		Removals: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "song_removals_total",
				Help:      "Songs removed.",
			},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds, by route and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "HTTP requests currently being served.",
			},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Submissions,
		m.Votes,
		m.StatusChanges,
		m.Removals,
		m.RequestDuration,
		m.InFlight,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument records duration and in-flight count for next under route. A nil
// receiver returns next untouched.
func (m *Metrics) Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		m.InFlight.Inc()
		defer m.InFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rec, r)
		m.RequestDuration.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveSubmission(outcome string) {
	if m != nil {
		m.Submissions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveVote(outcome string) {
	if m != nil {
		m.Votes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveStatusChange(status string, count int) {
	if m != nil && count > 0 {
		m.StatusChanges.WithLabelValues(status).Add(float64(count))
	}
}

func (m *Metrics) ObserveRemoval() {
	if m != nil {
		m.Removals.Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
