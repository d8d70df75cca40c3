package domain

import (
	"cmp"
	"strings"
	"time"

	"github.com/aretw0/abacus/pkg/arith"
	"github.com/google/uuid"
)

// Evaluation is a single calculation recorded in the history.
type Evaluation struct {
	ID         string    `json:"id"`
	Expression string    `json:"expression"`
	Result     string    `json:"result,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEvaluation starts a record for expression with a fresh ID. IDs are
// UUIDv7, so they sort in creation order within a process.
func NewEvaluation(expression string) *Evaluation {
	return &Evaluation{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Expression: expression,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewestFirst orders evaluations by CreatedAt at microsecond resolution,
// newest first, breaking ties by descending ID. Every HistoryStore lists in
// this order.
func NewestFirst(a, b Evaluation) int {
	if c := cmp.Compare(b.CreatedAt.UnixMicro(), a.CreatedAt.UnixMicro()); c != 0 {
		return c
	}
	return strings.Compare(b.ID, a.ID)
}

// Succeed stores the formatted result.
func (e *Evaluation) Succeed(n arith.Num) {
	e.Result = arith.Format(n)
	e.Kind = arith.KindOf(n).String()
	e.Error = ""
}

// Fail stores the error message.
func (e *Evaluation) Fail(err error) {
	e.Result = ""
	e.Kind = ""
	e.Error = err.Error()
}

// Failed reports whether the calculation produced an error.
func (e *Evaluation) Failed() bool {
	return e.Error != ""
}

// Value parses the stored result back into a number.
func (e *Evaluation) Value() (arith.Num, error) {
	return arith.Parse(e.Result)
}

// Snapshot returns a copy that shares nothing with e.
func (e *Evaluation) Snapshot() *Evaluation {
	c := *e
	return &c
}
