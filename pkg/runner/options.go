package runner

import (
	"log/slog"
)

// DefaultHistoryLimit is the number of entries :history shows without an argument.
const DefaultHistoryLimit = 20

// Option defines a functional option for configuring the REPL.
type Option func(*REPL)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *REPL) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *REPL) {
		r.Handler = handler
	}
}

// WithHistoryLimit sets how many entries :history shows without an argument.
func WithHistoryLimit(n int) Option {
	return func(r *REPL) {
		r.HistoryLimit = n
	}
}
