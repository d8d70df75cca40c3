package ports

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
)

// HistoryStore defines the interface for persisting evaluations.
type HistoryStore interface {
	// Append records an evaluation. An evaluation with an existing ID replaces the old record.
	Append(ctx context.Context, e *domain.Evaluation) error

	// Get retrieves one evaluation.
	// Returns domain.ErrEvaluationNotFound if the ID is unknown.
	Get(ctx context.Context, id string) (*domain.Evaluation, error)

	// List returns up to limit evaluations, newest first. A limit <= 0 returns all of them.
	List(ctx context.Context, limit int) ([]domain.Evaluation, error)

	// Clear removes every evaluation.
	Clear(ctx context.Context) error
}
