package expr

import (
	"github.com/aretw0/abacus/pkg/arith"
)

// Node is a node of a parsed expression.
type Node interface {
	// String renders the node in canonical form: operators surrounded by
	// single spaces and parentheses only where they change the meaning.
	String() string
	// Position is the byte offset of the node in the source.
	Position() int
}

// Number is a numeric literal.
type Number struct {
	Pos   int
	Text  string
	Value arith.Num
}

// Unary is a prefix sign applied to an operand.
type Unary struct {
	Pos      int
	Negative bool
	X        Node
}

// Binary is an infix arithmetic operation.
type Binary struct {
	Pos  int
	Op   arith.Op
	X, Y Node
}

func (n *Number) Position() int { return n.Pos }
func (n *Unary) Position() int  { return n.Pos }
func (n *Binary) Position() int { return n.Pos }

func (n *Number) String() string { return arith.Format(n.Value) }

func (n *Unary) String() string {
	sign := "+"
	if n.Negative {
		sign = "-"
	}
	if _, ok := n.X.(*Number); ok {
		return sign + n.X.String()
	}
	return sign + "(" + n.X.String() + ")"
}

func (n *Binary) String() string {
	prec := precedence(n.Op)
	left := n.X.String()
	if b, ok := n.X.(*Binary); ok && precedence(b.Op) < prec {
		left = "(" + left + ")"
	}
	right := n.Y.String()
	if b, ok := n.Y.(*Binary); ok && precedence(b.Op) <= prec {
		right = "(" + right + ")"
	}
	return left + " " + n.Op.Symbol() + " " + right
}

func precedence(op arith.Op) int {
	switch op {
	case arith.OpMultiply, arith.OpDivide:
		return 2
	default:
		return 1
	}
}
