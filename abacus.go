package abacus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/arith"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/expr"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/runner"
)

// OpExpression is the hook/metric label used for free-form expressions.
const OpExpression = "expression"

// Calculator is the high-level entry point for the abacus library.
// It is safe for concurrent use when its store is.
type Calculator struct {
	store        ports.HistoryStore
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	maxInputSize int
}

// Ensure Calculator implements the port driven by the adapters.
var _ ports.Calculator = (*Calculator)(nil)

// Option defines a functional option for configuring the Calculator.
type Option func(*Calculator)

// WithStore sets the history backend. The default is an in-memory store.
func WithStore(store ports.HistoryStore) Option {
	return func(c *Calculator) {
		c.store = store
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Calculator) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// WithMaxInputSize caps expression size in bytes. Zero keeps the runner default.
func WithMaxInputSize(n int) Option {
	return func(c *Calculator) {
		c.maxInputSize = n
	}
}

// New creates a Calculator.
func New(opts ...Option) *Calculator {
	c := &Calculator{}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = memory.NewStore()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Evaluate computes a literal expression and records it in the history.
// Evaluation failures (syntax errors, division by zero) are recorded too and
// returned alongside the failed record. Input rejected by sanitization or blank
// input is neither evaluated nor recorded.
func (c *Calculator) Evaluate(ctx context.Context, expression string) (*domain.Evaluation, error) {
	start := time.Now()

	clean, err := runner.SanitizeInputWithLimit(expression, c.maxInputSize)
	if err != nil {
		c.logger.Warn("Evaluate: input rejected", "error", err, "size", len(expression))
		return nil, err
	}
	clean = strings.TrimSpace(clean)

	node, err := expr.Parse(clean)
	if errors.Is(err, expr.ErrEmptyExpression) {
		return nil, err
	}

	rec := domain.NewEvaluation(clean)
	if err != nil {
		return c.finish(ctx, OpExpression, rec, start, err)
	}
	rec.Expression = node.String()

	v, err := expr.Eval(node)
	if err != nil {
		return c.finish(ctx, OpExpression, rec, start, err)
	}
	rec.Succeed(v)
	return c.finish(ctx, OpExpression, rec, start, nil)
}

// Apply computes "a op b" from textual operands and records it in the history.
// Operands are sanitized like expressions; rejected operands are not recorded.
func (c *Calculator) Apply(ctx context.Context, op arith.Op, a, b string) (*domain.Evaluation, error) {
	start := time.Now()

	var err error
	if a, err = c.sanitize(a); err != nil {
		return nil, err
	}
	if b, err = c.sanitize(b); err != nil {
		return nil, err
	}

	x, errA := arith.Parse(a)
	y, errB := arith.Parse(b)

	left, right := a, b
	if errA == nil {
		left = operand(x)
	}
	if errB == nil {
		right = operand(y)
	}
	rec := domain.NewEvaluation(left + " " + op.Symbol() + " " + right)

	if err := errors.Join(errA, errB); err != nil {
		return c.finish(ctx, op.String(), rec, start, err)
	}

	v, err := arith.Apply(op, x, y)
	if err != nil {
		return c.finish(ctx, op.String(), rec, start, err)
	}
	rec.Succeed(v)
	return c.finish(ctx, op.String(), rec, start, nil)
}

// sanitize trims an operand after enforcing the input limits.
func (c *Calculator) sanitize(operand string) (string, error) {
	clean, err := runner.SanitizeInputWithLimit(operand, c.maxInputSize)
	if err != nil {
		c.logger.Warn("Apply: operand rejected", "error", err, "size", len(operand))
		return "", err
	}
	return strings.TrimSpace(clean), nil
}

// operand formats n so that the recorded expression re-evaluates to the same
// value: rationals are parenthesized because '/' is division in expressions.
func operand(n arith.Num) string {
	s := arith.Format(n)
	if arith.KindOf(n) == arith.BigRat || strings.HasPrefix(s, "-") {
		return "(" + s + ")"
	}
	return s
}

func (c *Calculator) finish(ctx context.Context, op string, rec *domain.Evaluation, start time.Time, evalErr error) (*domain.Evaluation, error) {
	if evalErr != nil {
		rec.Fail(evalErr)
	}

	event := &domain.EvaluationEvent{
		Timestamp:  time.Now().UTC(),
		Op:         op,
		Evaluation: rec,
		Duration:   time.Since(start),
		Err:        evalErr,
	}

	if err := c.store.Append(ctx, rec); err != nil {
		c.logger.Error("Failed to record evaluation", "error", err, "id", rec.ID, "op", op)
		if evalErr == nil {
			evalErr = fmt.Errorf("failed to record evaluation: %w", err)
			event.Err = evalErr
		}
	}

	if event.Err != nil {
		event.Type = domain.EventFailed
		c.logger.Debug("Evaluation failed", "op", op, "expression", rec.Expression, "error", event.Err)
		if c.hooks.OnError != nil {
			c.hooks.OnError(ctx, event)
		}
		return rec, evalErr
	}

	event.Type = domain.EventEvaluated
	c.logger.Debug("Evaluated", "op", op, "expression", rec.Expression, "result", rec.Result, "kind", rec.Kind)
	if c.hooks.OnEvaluate != nil {
		c.hooks.OnEvaluate(ctx, event)
	}
	return rec, nil
}

// History lists recorded evaluations, newest first. A limit <= 0 lists all of them.
func (c *Calculator) History(ctx context.Context, limit int) ([]domain.Evaluation, error) {
	list, err := c.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return list, nil
}

// Lookup returns one recorded evaluation.
func (c *Calculator) Lookup(ctx context.Context, id string) (*domain.Evaluation, error) {
	return c.store.Get(ctx, id)
}

// ClearHistory removes every recorded evaluation.
func (c *Calculator) ClearHistory(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	c.logger.Info("History cleared")
	return nil
}
