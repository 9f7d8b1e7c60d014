package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	AdmissionCreated   = "created"
	AdmissionDuplicate = "duplicate"
	AdmissionFull      = "full"
	AdmissionRejected  = "rejected"
	AdmissionError     = "error"

	PublishSuccess = "success"
	PublishFailure = "failure"
)

// Metrics groups the collectors a service exposes. A nil *Metrics is valid
// and records nothing, so callers never need to branch on whether metrics are
// enabled.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	BookingAdmissions    *prometheus.CounterVec
	BookingStatusChanges *prometheus.CounterVec
	EventsPublished      *prometheus.CounterVec
}

func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		BookingAdmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_admissions_total",
			Help:      "Booking admission decisions by result.",
		}, []string{"service_name", "result"}),
		BookingStatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_changes_total",
			Help:      "Booking status transitions.",
		}, []string{"from", "to"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to the broker by type and result.",
		}, []string{"event_type", "result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.HTTPRequestsTotal,
			m.HTTPRequestDuration,
			m.HTTPRequestsInFlight,
			m.BookingAdmissions,
			m.BookingStatusChanges,
			m.EventsPublished,
		)
	}

	return m
}

func (m *Metrics) ObserveAdmission(serviceName, result string) {
	if m == nil {
		return
	}
	m.BookingAdmissions.WithLabelValues(serviceName, result).Inc()
}

func (m *Metrics) ObserveStatusChange(from, to string) {
	if m == nil {
		return
	}
	m.BookingStatusChanges.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObservePublish(eventType string, err error) {
	if m == nil {
		return
	}
	result := PublishSuccess
	if err != nil {
		result = PublishFailure
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}
