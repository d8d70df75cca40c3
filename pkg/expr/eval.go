package expr

import (
	"fmt"

	"github.com/aretw0/abacus/pkg/arith"
)

// EvalError is an arithmetic failure at the operator that caused it.
type EvalError struct {
	Pos int
	Op  arith.Op
	Err error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.Op, e.Pos, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Eval computes the value of n.
func Eval(n Node) (arith.Num, error) {
	switch n := n.(type) {
	case *Number:
		return n.Value, nil
	case *Unary:
		x, err := Eval(n.X)
		if err != nil {
			return nil, err
		}
		if n.Negative {
			return arith.Negate(x), nil
		}
		return x, nil
	case *Binary:
		x, err := Eval(n.X)
		if err != nil {
			return nil, err
		}
		y, err := Eval(n.Y)
		if err != nil {
			return nil, err
		}
		v, err := arith.Apply(n.Op, x, y)
		if err != nil {
			return nil, &EvalError{Pos: n.Pos, Op: n.Op, Err: err}
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown node type %T", n)
	}
}

// Evaluate parses and evaluates src.
func Evaluate(src string) (arith.Num, error) {
	n, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return Eval(n)
}
