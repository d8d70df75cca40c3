package ports

import (
	"context"

	"github.com/aretw0/abacus/pkg/arith"
	"github.com/aretw0/abacus/pkg/domain"
)

// Calculator is the interface transport adapters (HTTP, MCP, REPL) drive.
type Calculator interface {
	// Evaluate computes a literal expression such as "10 / 2" and records it.
	Evaluate(ctx context.Context, expression string) (*domain.Evaluation, error)

	// Apply computes "a op b" from textual operands and records it.
	Apply(ctx context.Context, op arith.Op, a, b string) (*domain.Evaluation, error)

	// History lists recorded evaluations, newest first.
	History(ctx context.Context, limit int) ([]domain.Evaluation, error)

	// Lookup returns one recorded evaluation.
	Lookup(ctx context.Context, id string) (*domain.Evaluation, error)

	// ClearHistory removes every recorded evaluation.
	ClearHistory(ctx context.Context) error
}
