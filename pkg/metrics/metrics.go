package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "spa"

// Booking outcomes.
const (
	BookingSubmitted  = "submitted"
	BookingFailed     = "failed"
	BookingValidation = "validation"
)

// Metrics bundles every collector the API exports.
type Metrics struct {
	httpDuration  *prometheus.HistogramVec
	cartMutations *prometheus.CounterVec
	bookings      *prometheus.CounterVec
	intents       *prometheus.CounterVec
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
}

// New registers the collectors on the provided registerer.
// A nil registerer yields a no-op Metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Cart mutations by operation.",
	}, []string{"op"})
	bookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_submissions_total",
		Help:      "Booking submissions by outcome.",
	}, []string{"outcome"})
	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_intents_total",
		Help:      "Terminal payment intent operations by op and result.",
	}, []string{"op", "result"})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cron_job_runs_total",
		Help:      "Maintenance job runs by job and result.",
	}, []string{"job", "result"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cron_job_duration_seconds",
		Help:      "Duration of maintenance job runs in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	}, []string{"job"})
	reg.MustRegister(httpDuration, cartMutations, bookings, intents, jobRuns, jobDuration)
	return &Metrics{
		httpDuration:  httpDuration,
		cartMutations: cartMutations,
		bookings:      bookings,
		intents:       intents,
		jobRuns:       jobRuns,
		jobDuration:   jobDuration,
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, normalizeLabel(route), statusClass(status)).Observe(duration.Seconds())
}

// IncCartMutation counts add/remove/clear operations.
func (m *Metrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncBooking counts a booking submission outcome.
func (m *Metrics) IncBooking(outcome string) {
	if m == nil || m.bookings == nil {
		return
	}
	m.bookings.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncPaymentIntent counts a payment intent operation.
func (m *Metrics) IncPaymentIntent(op string, err error) {
	if m == nil || m.intents == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.intents.WithLabelValues(normalizeLabel(op), result).Inc()
}

// ObserveJob records one maintenance job run.
func (m *Metrics) ObserveJob(job string, duration time.Duration, err error) {
	if m == nil || m.jobRuns == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.jobRuns.WithLabelValues(normalizeLabel(job), result).Inc()
	m.jobDuration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
