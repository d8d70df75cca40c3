package runner

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Input reads the next line from the user. It returns io.EOF when the input is exhausted.
	Input(ctx context.Context) (string, error)

	// Output presents the outcome of one calculation. rec may be nil when err
	// prevented the calculation from being recorded.
	Output(ctx context.Context, rec *domain.Evaluation, err error) error

	// History presents a list of recorded evaluations, newest first.
	History(ctx context.Context, list []domain.Evaluation) error

	// SystemOutput presents a meta-message to the user (command feedback, help).
	// This is distinct from calculation results.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms markdown before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
