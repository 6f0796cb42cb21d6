package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notifyhub"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeIgnored = "ignored"
	OutcomeGone    = "gone"
)

// Metrics holds the service instruments.
type Metrics struct {
	Broadcasts       *prometheus.CounterVec
	QueueSends       *prometheus.CounterVec
	Deliveries       *prometheus.CounterVec
	DeliveryDuration *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New registers the instruments with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		Broadcasts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "broadcasts_total",
				Help:      "Total number of broadcast requests by outcome",
			},
			[]string{"outcome"},
		),
		QueueSends: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queue_sends_total",
				Help:      "Total number of messages sent or scheduled per queue",
			},
			[]string{"queue", "outcome"},
		),
		Deliveries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Total number of channel deliveries by outcome",
			},
			[]string{"channel", "outcome"},
		),
		DeliveryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "delivery_duration_seconds",
				Help:      "Channel delivery duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"channel"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Handler serves the metrics gathered by g. A nil g serves the default
// gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) Broadcast(outcome string) {
	if m == nil {
		return
	}
	m.Broadcasts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) QueueSend(queue string, err error) {
	if m == nil {
		return
	}
	m.QueueSends.WithLabelValues(queue, outcomeOf(err)).Inc()
}

// Delivery records one channel delivery attempt and its duration.
func (m *Metrics) Delivery(channel, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(channel, outcome).Inc()
	m.DeliveryDuration.WithLabelValues(channel).Observe(d.Seconds())
}

// DeliveryOutcome counts a per-target outcome inside one delivery, such as
// a pruned subscription, without observing a duration.
func (m *Metrics) DeliveryOutcome(channel, outcome string) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(channel, outcome).Inc()
}

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
