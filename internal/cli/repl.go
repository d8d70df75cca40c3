package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/presentation/tui"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/runner"
)

// REPLOptions configures RunREPL.
type REPLOptions struct {
	In           io.Reader
	Out          io.Writer
	JSON         bool
	Quiet        bool // suppress the banner
	HistoryLimit int
}

// RunREPL runs the interactive loop until EOF, :quit or an interrupt signal.
// Terminal output gets a banner, colored results and rendered history tables.
func RunREPL(ctx context.Context, calc ports.Calculator, opts REPLOptions, logger *slog.Logger) error {
	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		handler = newTextHandler(opts.In, opts.Out, logger)
		if !opts.Quiet && tui.IsTerminal(opts.Out) {
			tui.PrintBanner(opts.Out, abacus.Version)
		}
	}

	repl := runner.NewREPL(calc,
		runner.WithInputHandler(handler),
		runner.WithLogger(logger),
		runner.WithHistoryLimit(opts.HistoryLimit),
	)

	signals := runner.NewSignalManager(ctx)
	defer signals.Stop()

	err := repl.Run(signals.Context())
	if errors.Is(err, context.Canceled) {
		logger.Debug("REPL interrupted")
		return nil
	}
	return err
}

// PrintHistory writes list the way the REPL's :history command does.
func PrintHistory(ctx context.Context, w io.Writer, list []domain.Evaluation, logger *slog.Logger) error {
	return newTextHandler(nil, w, logger).History(ctx, list)
}

func newTextHandler(in io.Reader, out io.Writer, logger *slog.Logger) *runner.TextHandler {
	var opts []runner.TextHandlerOption
	if tui.IsTerminal(out) {
		if render, err := tui.NewRenderer(""); err == nil {
			opts = append(opts, runner.WithTextHandlerRenderer(render))
		} else {
			logger.Warn("Markdown renderer unavailable", "error", err)
		}
		opts = append(opts, runner.WithTextHandlerHighlight(tui.NewHighlighter(out)))
	} else {
		opts = append(opts, runner.WithTextHandlerPrompt(""))
	}
	return runner.NewTextHandler(in, out, opts...)
}
