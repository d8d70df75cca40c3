package arith

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Add returns a + b.
func Add(a, b Num) Num {
	if x, ok := a.(int); ok {
		if y, ok := b.(int); ok {
			if s := x + y; (s > x) == (y > 0) {
				return s
			}
		}
	}
	a, b, k := unify(a, b, BigInt)
	switch k {
	case BigInt:
		return Normalize(new(big.Int).Add(a.(*big.Int), b.(*big.Int)))
	case BigRat:
		return Normalize(new(big.Rat).Add(a.(*big.Rat), b.(*big.Rat)))
	default:
		return a.(float64) + b.(float64)
	}
}

// Subtract returns a - b.
func Subtract(a, b Num) Num {
	if x, ok := a.(int); ok {
		if y, ok := b.(int); ok {
			if d := x - y; (d < x) == (y > 0) {
				return d
			}
		}
	}
	a, b, k := unify(a, b, BigInt)
	switch k {
	case BigInt:
		return Normalize(new(big.Int).Sub(a.(*big.Int), b.(*big.Int)))
	case BigRat:
		return Normalize(new(big.Rat).Sub(a.(*big.Rat), b.(*big.Rat)))
	default:
		return a.(float64) - b.(float64)
	}
}

// Multiply returns a * b. An exact zero absorbs any other operand except an
// infinite or NaN float.
func Multiply(a, b Num) Num {
	if (a == 0 && !nonFinite(b)) || (b == 0 && !nonFinite(a)) {
		return 0
	}
	if x, ok := a.(int); ok {
		if y, ok := b.(int); ok {
			if p, ok := mulInt(x, y); ok {
				return p
			}
		}
	}
	a, b, k := unify(a, b, BigInt)
	switch k {
	case BigInt:
		return Normalize(new(big.Int).Mul(a.(*big.Int), b.(*big.Int)))
	case BigRat:
		return Normalize(new(big.Rat).Mul(a.(*big.Rat), b.(*big.Rat)))
	default:
		return a.(float64) * b.(float64)
	}
}

func mulInt(x, y int) (int, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	if (x == -1 && y == math.MinInt) || (y == -1 && x == math.MinInt) {
		return 0, false
	}
	p := x * y
	if p/y != x {
		return 0, false
	}
	return p, true
}

func nonFinite(n Num) bool {
	f, ok := n.(float64)
	return ok && (math.IsInf(f, 0) || math.IsNaN(f))
}

// Divide returns a / b. Exact operands yield an exact quotient, so 10/2 is
// the int 5 and 1/3 is a rational. An exact zero divisor yields
// ErrDivideByZero; a float zero divisor follows IEEE 754.
func Divide(a, b Num) (Num, error) {
	if b == 0 {
		return nil, ErrDivideByZero
	}
	// 0 / 0.0 is NaN, so the exact shortcut only applies to exact divisors.
	if a == 0 && KindOf(b) != Float {
		return 0, nil
	}
	a, b, k := unify(a, b, BigRat)
	switch k {
	case BigRat:
		return Normalize(new(big.Rat).Quo(a.(*big.Rat), b.(*big.Rat))), nil
	default:
		return a.(float64) / b.(float64), nil
	}
}

// Negate returns -n.
func Negate(n Num) Num {
	switch n := n.(type) {
	case int:
		if n == math.MinInt {
			return new(big.Int).Neg(big.NewInt(int64(n)))
		}
		return -n
	case *big.Int:
		return Normalize(new(big.Int).Neg(n))
	case *big.Rat:
		return new(big.Rat).Neg(n)
	case float64:
		return -n
	default:
		panic(fmt.Sprintf("arith: invalid num type %T", n))
	}
}

// Op is a binary arithmetic operator.
type Op uint8

const (
	OpAdd Op = iota
	OpSubtract
	OpMultiply
	OpDivide
)

// Ops lists every operator in precedence-agnostic declaration order.
var Ops = []Op{OpAdd, OpSubtract, OpMultiply, OpDivide}

func (op Op) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Symbol returns the infix symbol of op.
func (op Op) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	default:
		return "?"
	}
}

// ParseOp accepts an operator name ("add") or symbol ("+").
func ParseOp(s string) (Op, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, op := range Ops {
		if s == op.String() || s == op.Symbol() {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

// Apply evaluates a op b.
func Apply(op Op, a, b Num) (Num, error) {
	switch op {
	case OpAdd:
		return Add(a, b), nil
	case OpSubtract:
		return Subtract(a, b), nil
	case OpMultiply:
		return Multiply(a, b), nil
	case OpDivide:
		return Divide(a, b)
	default:
		return nil, fmt.Errorf("unknown operator %v", op)
	}
}
