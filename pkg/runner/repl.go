package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aretw0/abacus/pkg/ports"
)

const helpText = `enter an expression such as (1 + 2) * 3, or a command:
  :history [n]  list the last n evaluations
  :clear        clear the history
  :help         show this message
  :quit, exit   leave`

// REPL reads expressions line by line and evaluates them with a Calculator.
type REPL struct {
	Calculator ports.Calculator

	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	HistoryLimit int
}

// NewREPL creates a REPL driving calc.
func NewREPL(calc ports.Calculator, opts ...Option) *REPL {
	r := &REPL{
		Calculator:   calc,
		HistoryLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run loops until the input is exhausted, a quit command is read or ctx is
// cancelled. A line that fails to evaluate is reported and the loop goes on.
// EOF and quit return nil; cancellation returns the context error.
func (r *REPL) Run(ctx context.Context) error {
	for {
		line, err := r.Handler.Input(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				r.Logger.Debug("REPL: input closed")
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, ErrInputTooLarge), errors.Is(err, ErrInvalidUTF8):
				if err := r.Handler.Output(ctx, nil, err); err != nil {
					return err
				}
				continue
			default:
				return fmt.Errorf("failed to read input: %w", err)
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || strings.HasPrefix(line, ":") {
			quit, err := r.command(ctx, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			continue
		}

		rec, evalErr := r.Calculator.Evaluate(ctx, line)
		if evalErr != nil {
			r.Logger.Debug("REPL: evaluation failed", "line", line, "error", evalErr)
		}
		if err := r.Handler.Output(ctx, rec, evalErr); err != nil {
			return err
		}
	}
}

// command executes a REPL command. It reports whether the loop should stop;
// the returned error is an output failure, command failures are shown to the user.
func (r *REPL) command(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit", "exit":
		return true, nil

	case ":history":
		limit := r.HistoryLimit
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 || len(fields) > 2 {
				return false, r.Handler.SystemOutput(ctx, "usage: :history [n]")
			}
			limit = n
		}
		list, err := r.Calculator.History(ctx, limit)
		if err != nil {
			return false, r.Handler.Output(ctx, nil, err)
		}
		return false, r.Handler.History(ctx, list)

	case ":clear":
		if err := r.Calculator.ClearHistory(ctx); err != nil {
			return false, r.Handler.Output(ctx, nil, err)
		}
		return false, r.Handler.SystemOutput(ctx, "history cleared")

	case ":help", ":h":
		return false, r.Handler.SystemOutput(ctx, helpText)

	default:
		return false, r.Handler.SystemOutput(ctx, fmt.Sprintf("unknown command %q, try :help", fields[0]))
	}
}
