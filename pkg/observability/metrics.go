package observability

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the calculator collectors.
type Metrics struct {
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "abacus_evaluations_total",
				Help: "Total number of evaluations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "abacus_evaluation_duration_seconds",
				Help:    "Duration of evaluations, including recording them in the history",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.evaluations, m.duration)
	}
	return m
}

// Observe records one event.
func (m *Metrics) Observe(e *domain.EvaluationEvent) {
	outcome := OutcomeOK
	if e.Type == domain.EventFailed {
		outcome = OutcomeError
	}
	m.evaluations.WithLabelValues(e.Op, outcome).Inc()
	m.duration.WithLabelValues(e.Op).Observe(e.Duration.Seconds())
}

// Hooks returns lifecycle hooks feeding m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	observe := func(_ context.Context, e *domain.EvaluationEvent) { m.Observe(e) }
	return domain.LifecycleHooks{
		OnEvaluate: observe,
		OnError:    observe,
	}
}
