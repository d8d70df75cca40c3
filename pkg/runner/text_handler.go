package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	// Highlight decorates a result line, e.g. with terminal colors.
	Highlight func(line string, failed bool) string
	// Prompt is written before every read. Empty disables it.
	Prompt string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the markdown renderer used for history tables.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerHighlight configures result decoration.
func WithTextHandlerHighlight(fn func(line string, failed bool) string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Highlight = fn
	}
}

// WithTextHandlerPrompt overrides the "> " prompt.
func WithTextHandlerPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		Prompt: "> ",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honor context cancellation
// while a read is blocked.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')

		// If we got text (even with EOF), send it
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}

		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			// Backoff for non-fatal errors to prevent CPU spikes on persistent failure
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		// Only show prompt if context is not yet done
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			if h.Prompt != "" {
				fmt.Fprint(h.Writer, h.Prompt)
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			text := strings.TrimSpace(res.text)

			// Sanitize Input (Limit + Control Chars)
			clean, err := SanitizeInput(text)
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, rec *domain.Evaluation, err error) error {
	var line string
	failed := err != nil
	if failed {
		line = "error: " + err.Error()
	} else {
		line = "= " + rec.Result
	}
	if h.Highlight != nil {
		line = h.Highlight(line, failed)
	}
	_, werr := fmt.Fprintln(h.Writer, line)
	return werr
}

func (h *TextHandler) History(ctx context.Context, list []domain.Evaluation) error {
	if len(list) == 0 {
		return h.SystemOutput(ctx, "history is empty")
	}

	if h.Renderer != nil {
		if rendered, err := h.Renderer(HistoryMarkdown(list)); err == nil {
			_, err := fmt.Fprintln(h.Writer, strings.TrimRight(rendered, "\n"))
			return err
		}
	}

	for _, e := range list {
		if e.Failed() {
			fmt.Fprintf(h.Writer, "%s  error: %s\n", e.Expression, e.Error)
			continue
		}
		fmt.Fprintf(h.Writer, "%s = %s\n", e.Expression, e.Result)
	}
	return nil
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}

// HistoryMarkdown renders list as a markdown table.
func HistoryMarkdown(list []domain.Evaluation) string {
	var b strings.Builder
	b.WriteString("| # | Expression | Result | Kind | At |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for i, e := range list {
		result := "`" + e.Result + "`"
		if e.Failed() {
			result = "**error:** " + escapeCell(e.Error)
		}
		fmt.Fprintf(&b, "| %d | `%s` | %s | %s | %s |\n",
			i+1, e.Expression, result, e.Kind, e.CreatedAt.Local().Format(time.TimeOnly))
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
