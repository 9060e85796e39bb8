// Package metrics records SDK request and tracking metrics in a Prometheus registry.
package metrics

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const namespace = "constructorio"

// Tracking outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "circuit_open"
)

// Collector holds the SDK metrics. A nil *Collector records nothing.
type Collector struct {
	registry *prometheus.Registry

	Requests         *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	TransportErrors  *prometheus.CounterVec
	TrackingEvents   *prometheus.CounterVec
	TrackingInFlight prometheus.Gauge
	SessionStarts    prometheus.Counter
	BreakerChanges   *prometheus.CounterVec
}

// New registers the SDK metrics in a fresh registry.
func New() *Collector {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the SDK metrics in reg.
func NewWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests sent to the service by endpoint and status code",
		}, []string{"endpoint", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time until response headers were received",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		TransportErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_transport_errors_total",
			Help:      "Requests that failed before a response was received",
		}, []string{"endpoint"}),
		TrackingEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_events_total",
			Help:      "Tracking events dispatched by event name and outcome",
		}, []string{"event", "outcome"}),
		TrackingInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracking_in_flight",
			Help:      "Tracking events currently being sent",
		}),
		SessionStarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_starts_total",
			Help:      "Sessions started after inactivity",
		}),
		BreakerChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_breaker_transitions_total",
			Help:      "Tracking circuit breaker state transitions",
		}, []string{"to"}),
	}
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Gather returns the current metric families.
func (c *Collector) Gather() ([]*dto.MetricFamily, error) {
	return c.registry.Gather()
}

// WriteText writes the metrics in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// ObserveTracking counts a finished tracking event.
func (c *Collector) ObserveTracking(event, outcome string) {
	if c == nil {
		return
	}
	c.TrackingEvents.WithLabelValues(event, outcome).Inc()
}

// TrackingStarted marks an event as in flight.
func (c *Collector) TrackingStarted() {
	if c != nil {
		c.TrackingInFlight.Inc()
	}
}

// TrackingFinished marks an in-flight event as done.
func (c *Collector) TrackingFinished() {
	if c != nil {
		c.TrackingInFlight.Dec()
	}
}

// ObserveSessionStart counts a new session.
func (c *Collector) ObserveSessionStart() {
	if c != nil {
		c.SessionStarts.Inc()
	}
}

// ObserveBreakerState counts a breaker transition.
func (c *Collector) ObserveBreakerState(to string) {
	if c != nil {
		c.BreakerChanges.WithLabelValues(to).Inc()
	}
}

// Transport returns a RoundTripper that records request metrics before
// delegating to next.
func (c *Collector) Transport(next http.RoundTripper) http.RoundTripper {
	if c == nil {
		return next
	}
	return &instrumented{next: next, c: c}
}

type instrumented struct {
	next http.RoundTripper
	c    *Collector
}

func (t *instrumented) RoundTrip(req *http.Request) (*http.Response, error) {
	endpoint := Endpoint(req.URL.Path)
	start := time.Now()

	resp, err := t.next.RoundTrip(req)
	t.c.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		t.c.TransportErrors.WithLabelValues(endpoint).Inc()
		return nil, err
	}
	t.c.Requests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

// Endpoint maps a request path to a low-cardinality label such as
// "/search/{term}" or "/v2/behavioral_action/conversion".
func Endpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch parts[0] {
	case "autocomplete":
		if len(parts) == 3 {
			return "/autocomplete/{term}/" + parts[2]
		}
		return "/autocomplete/{term}"
	case "search":
		return "/search/{term}"
	case "browse":
		if len(parts) == 2 {
			return "/browse/" + parts[1]
		}
		return "/browse/{filter_name}/{filter_value}"
	case "recommendations":
		return "/recommendations/v1/pods/{pod_id}"
	case "v1":
		if len(parts) == 4 && parts[1] == "quizzes" {
			return "/v1/quizzes/{quiz_id}/" + parts[3]
		}
	case "behavior":
		return "/behavior"
	case "v2":
		return path
	}
	return "other"
}
