package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/abacus/pkg/domain"
)

// LogHooks returns lifecycle hooks writing one line per evaluation to logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEvaluate: func(ctx context.Context, e *domain.EvaluationEvent) {
			logger.InfoContext(ctx, "evaluation",
				"id", e.Evaluation.ID,
				"op", e.Op,
				"expression", e.Evaluation.Expression,
				"result", e.Evaluation.Result,
				"kind", e.Evaluation.Kind,
				"duration", e.Duration,
			)
		},
		OnError: func(ctx context.Context, e *domain.EvaluationEvent) {
			logger.WarnContext(ctx, "evaluation_failed",
				"id", e.Evaluation.ID,
				"op", e.Op,
				"expression", e.Evaluation.Expression,
				"error", e.Err,
				"duration", e.Duration,
			)
		},
	}
}
