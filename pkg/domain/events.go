package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventEvaluated EventType = "evaluated"
	EventFailed    EventType = "failed"
)

// EvaluationEvent is emitted once per calculation, successful or not.
type EvaluationEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Type       EventType     `json:"type"`
	Op         string        `json:"op"` // "expression" or an operator name such as "add"
	Evaluation *Evaluation   `json:"evaluation"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`
}

// LifecycleHooks defines callbacks for calculator observability.
type LifecycleHooks struct {
	OnEvaluate func(context.Context, *EvaluationEvent)
	OnError    func(context.Context, *EvaluationEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnEvaluate: chain(h.OnEvaluate, other.OnEvaluate),
		OnError:    chain(h.OnError, other.OnError),
	}
}

func chain(a, b func(context.Context, *EvaluationEvent)) func(context.Context, *EvaluationEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *EvaluationEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
