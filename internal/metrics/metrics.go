// Package metrics exposes Prometheus counters for webhook handling and scoring.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the coach. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Webhook metrics
	WebhookEventsTotal *prometheus.CounterVec
	WebhookErrorsTotal *prometheus.CounterVec

	// Session metrics
	SessionsCreatedTotal   *prometheus.CounterVec
	StatusTransitionsTotal *prometheus.CounterVec

	// Scoring metrics
	AnswerScoresTotal prometheus.Counter
	ScoringRunsTotal  *prometheus.CounterVec
	ScoringDuration   prometheus.Histogram
}

// Scoring outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeExisting  = "existing"
	OutcomeNoProduct = "no_product"
	OutcomeError     = "error"
)

// NewMetrics creates a new Metrics instance with all Prometheus metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "calling_coach"
	}

	registry := prometheus.NewRegistry()

	webhookEventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Total number of webhook events received, by type",
		},
		[]string{"type"},
	)

	webhookErrorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_errors_total",
			Help:      "Webhook events whose handling failed internally",
		},
		[]string{"type"},
	)

	sessionsCreatedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of practice sessions created",
		},
		[]string{"personality"},
	)

	statusTransitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_status_transitions_total",
			Help:      "Session status changes, by target status",
		},
		[]string{"status"},
	)

	answerScoresTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_scores_total",
			Help:      "Total number of in-call answer scores recorded",
		},
	)

	scoringRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_runs_total",
			Help:      "Full-session scoring attempts, by outcome",
		},
		[]string{"outcome"},
	)

	scoringDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_duration_seconds",
			Help:      "Evaluator latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	registry.MustRegister(
		webhookEventsTotal,
		webhookErrorsTotal,
		sessionsCreatedTotal,
		statusTransitionsTotal,
		answerScoresTotal,
		scoringRunsTotal,
		scoringDuration,
	)

	return &Metrics{
		registry:               registry,
		WebhookEventsTotal:     webhookEventsTotal,
		WebhookErrorsTotal:     webhookErrorsTotal,
		SessionsCreatedTotal:   sessionsCreatedTotal,
		StatusTransitionsTotal: statusTransitionsTotal,
		AnswerScoresTotal:      answerScoresTotal,
		ScoringRunsTotal:       scoringRunsTotal,
		ScoringDuration:        scoringDuration,
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordWebhook records a received webhook event. Unknown types are recorded as "unknown".
func (m *Metrics) RecordWebhook(eventType string) {
	if m == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	m.WebhookEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordWebhookError records a webhook event whose handling failed.
func (m *Metrics) RecordWebhookError(eventType string) {
	if m == nil {
		return
	}
	m.WebhookErrorsTotal.WithLabelValues(eventType).Inc()
}

// RecordSessionCreated records a new session.
func (m *Metrics) RecordSessionCreated(personality string) {
	if m == nil {
		return
	}
	m.SessionsCreatedTotal.WithLabelValues(personality).Inc()
}

// RecordTransition records a session moving to status.
func (m *Metrics) RecordTransition(status string) {
	if m == nil {
		return
	}
	m.StatusTransitionsTotal.WithLabelValues(status).Inc()
}

// RecordAnswerScore records an in-call answer score.
func (m *Metrics) RecordAnswerScore() {
	if m == nil {
		return
	}
	m.AnswerScoresTotal.Inc()
}

// RecordScoring records a full-session scoring attempt.
func (m *Metrics) RecordScoring(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ScoringRunsTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		m.ScoringDuration.Observe(duration.Seconds())
	}
}
