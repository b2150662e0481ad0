package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Harshitk-cp/informed/internal/domain"
)

// Metrics holds the engine and session collectors. It satisfies
// inference.Observer and service.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	DegenerateUpdates *prometheus.CounterVec
	NegativeGains     *prometheus.CounterVec
	SessionsStarted   prometheus.Counter
	SessionsCompleted *prometheus.CounterVec
	AnswersRecorded   *prometheus.CounterVec
	QuestionsToFinish *prometheus.HistogramVec
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, so independent
// instances (one per test, say) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		DegenerateUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "informed_degenerate_updates_total",
				Help: "Bayesian updates whose answer had zero total probability and fell back to uniform",
			},
			[]string{"symptom"},
		),
		NegativeGains: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "informed_negative_information_gain_total",
				Help: "Information gain evaluations below the numeric tolerance",
			},
			[]string{"symptom"},
		),
		SessionsStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "informed_sessions_started_total",
				Help: "Diagnostic sessions started",
			},
		),
		SessionsCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "informed_sessions_completed_total",
				Help: "Diagnostic sessions that reached a stopping condition",
			},
			[]string{"reason"},
		),
		AnswersRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "informed_answers_total",
				Help: "Answers folded into session posteriors",
			},
			[]string{"answer"},
		),
		QuestionsToFinish: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "informed_questions_to_completion",
				Help:    "Questions asked before a session reached a stopping condition",
				Buckets: prometheus.LinearBuckets(1, 2, 18), // 1..35
			},
			[]string{"reason"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "informed_http_requests_total",
				Help: "HTTP requests by method, route pattern and status code",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "informed_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route pattern",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (m *Metrics) DegenerateUpdate(symptomID string) {
	m.DegenerateUpdates.WithLabelValues(symptomID).Inc()
}

func (m *Metrics) NegativeGain(symptomID string, gain float64) {
	m.NegativeGains.WithLabelValues(symptomID).Inc()
}

func (m *Metrics) SessionStarted() {
	m.SessionsStarted.Inc()
}

func (m *Metrics) AnswerRecorded(yes bool) {
	label := "no"
	if yes {
		label = "yes"
	}
	m.AnswersRecorded.WithLabelValues(label).Inc()
}

func (m *Metrics) SessionCompleted(reason domain.CompletionReason, questions int) {
	m.SessionsCompleted.WithLabelValues(string(reason)).Inc()
	m.QuestionsToFinish.WithLabelValues(string(reason)).Observe(float64(questions))
}

func (m *Metrics) ObserveRequest(method, route, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Registry exposes the underlying registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
