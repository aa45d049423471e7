// Package metrics records Prometheus metrics for backend requests and prompt
// exchanges.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flowdraft"

// Request kinds.
const (
	KindPrompt = "prompt"
	KindDraft  = "draft"
	KindHealth = "health"
)

// Request outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"
	OutcomeUnreachable = "unreachable"
)

// Recorder owns the flowdraft collectors. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	inFlight       prometheus.Gauge
	promptRejected *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is convenient in tests.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Backend requests by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Backend request duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"kind"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "prompt_in_flight",
				Help:      "1 while a prompt exchange is awaiting the backend",
			},
		),
		promptRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "prompt_rejected_total",
				Help:      "Prompt submissions ignored before any request was sent",
			},
			[]string{"reason"}, // empty, busy
		),
	}
	if reg != nil {
		reg.MustRegister(r.requests, r.duration, r.inFlight, r.promptRejected)
	}
	return r
}

// ObserveRequest records one completed backend request.
func (r *Recorder) ObserveRequest(kind, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(kind, outcome).Inc()
	r.duration.WithLabelValues(kind).Observe(d.Seconds())
}

// PromptStarted marks a prompt exchange as in flight.
func (r *Recorder) PromptStarted() {
	if r == nil {
		return
	}
	r.inFlight.Set(1)
}

// PromptFinished clears the in-flight marker.
func (r *Recorder) PromptFinished() {
	if r == nil {
		return
	}
	r.inFlight.Set(0)
}

// PromptRejected counts a prompt submission that was ignored.
func (r *Recorder) PromptRejected(reason string) {
	if r == nil {
		return
	}
	r.promptRejected.WithLabelValues(reason).Inc()
}
