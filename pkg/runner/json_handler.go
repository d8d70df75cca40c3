package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
)

// JSONResult is one output line of the JSONHandler. History listings are
// written as {"history": [...]} instead.
type JSONResult struct {
	Evaluation *domain.Evaluation `json:"evaluation,omitempty"`
	Error      string             `json:"error,omitempty"`
	System     string             `json:"system,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Input reads one line. A JSON string ("1 + 1") or an object with an
// "expression" field is unwrapped; anything else is taken as raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	} else {
		var req struct {
			Expression *string `json:"expression"`
		}
		if err := json.Unmarshal([]byte(text), &req); err == nil && req.Expression != nil {
			text = *req.Expression
		}
	}

	return SanitizeInput(text)
}

func (h *JSONHandler) Output(ctx context.Context, rec *domain.Evaluation, err error) error {
	res := JSONResult{Evaluation: rec}
	if err != nil {
		res.Error = err.Error()
	}
	return h.Encoder.Encode(res)
}

func (h *JSONHandler) History(ctx context.Context, list []domain.Evaluation) error {
	if list == nil {
		list = []domain.Evaluation{}
	}
	// Encode through a map so an empty history is still emitted as [].
	return h.Encoder.Encode(map[string]any{"history": list})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(JSONResult{System: msg})
}
