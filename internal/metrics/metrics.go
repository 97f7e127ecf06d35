// Package metrics exposes Prometheus counters for the booking flow.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	bookingsCreated    prometheus.Counter
	validationRejected *prometheus.CounterVec
	uploadURLsIssued   prometheus.Counter
	httpResponses      *prometheus.CounterVec
	slotConflictsLost  prometheus.Counter
}

// NewCollector registers the service metrics on reg and returns the collector.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autocare_bookings_created_total",
			Help: "Appointments successfully persisted.",
		}),
		validationRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autocare_validation_rejected_total",
			Help: "Booking candidates rejected by the validator, by reason.",
		}, []string{"reason"}),
		uploadURLsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autocare_upload_urls_issued_total",
			Help: "Pre-signed upload URLs issued.",
		}),
		httpResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autocare_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		slotConflictsLost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autocare_slot_conflicts_total",
			Help: "Bookings that lost the slot transaction after passing validation.",
		}),
	}

	reg.MustRegister(
		c.bookingsCreated,
		c.validationRejected,
		c.uploadURLsIssued,
		c.httpResponses,
		c.slotConflictsLost,
	)
	return c
}

func (c *Collector) RecordBookingCreated() {
	c.bookingsCreated.Inc()
}

// RecordValidationRejected counts a rejection. Reasons come from the fixed
// rule set, so label cardinality stays bounded.
func (c *Collector) RecordValidationRejected(reason string) {
	c.validationRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordUploadURLIssued() {
	c.uploadURLsIssued.Inc()
}

func (c *Collector) RecordHTTPStatus(code int) {
	c.httpResponses.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (c *Collector) RecordSlotConflict() {
	c.slotConflictsLost.Inc()
}

// Handler returns the /metrics endpoint for the given registry, including
// process and Go runtime collectors.
func Handler(reg *prometheus.Registry) http.Handler {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
