package arith

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Num is a number. Its dynamic type is one of int, *big.Int, *big.Rat or
// float64. Values returned by this package are never mutated afterwards.
type Num any

// Kind identifies the representation of a Num. The order of the constants
// is the precedence used when two operands are unified.
type Kind uint8

const (
	Int Kind = iota
	BigInt
	BigRat
	Float
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case BigInt:
		return "bigint"
	case BigRat:
		return "rat"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

var (
	// ErrInvalidNumber is returned when a string cannot be parsed as a number.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrDivideByZero is returned when the divisor is an exact zero.
	ErrDivideByZero = errors.New("division by zero")
)

// KindOf returns the kind of n. It panics if n is not a valid Num.
func KindOf(n Num) Kind {
	switch n.(type) {
	case int:
		return Int
	case *big.Int:
		return BigInt
	case *big.Rat:
		return BigRat
	case float64:
		return Float
	default:
		panic(fmt.Sprintf("arith: invalid num type %T", n))
	}
}

// FromInt wraps an int.
func FromInt(i int) Num { return i }

// FromFloat wraps a float64.
func FromFloat(f float64) Num { return f }

// Parse converts s into a Num. Strings containing a '/' are parsed as exact
// rationals (e.g. "1/3"), integers of any size become int or *big.Int, and
// everything else accepted by strconv.ParseFloat becomes a float64.
func Parse(s string) (Num, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidNumber)
	}
	if strings.ContainsRune(s, '/') {
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
		}
		return Normalize(r), nil
	}
	if z, ok := new(big.Int).SetString(s, 10); ok {
		return Normalize(z), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return f, nil
}

// Normalize returns the simplest representation of n: a *big.Int that fits
// in an int becomes an int, and an integral *big.Rat becomes an integer.
func Normalize(n Num) Num {
	switch n := n.(type) {
	case int:
		return n
	case *big.Int:
		if i, ok := fixInt(n); ok {
			return i
		}
		return n
	case *big.Rat:
		if n.IsInt() {
			return Normalize(new(big.Int).Set(n.Num()))
		}
		return n
	case float64:
		return n
	default:
		panic(fmt.Sprintf("arith: invalid num type %T", n))
	}
}

func fixInt(z *big.Int) (int, bool) {
	if z.IsInt64() {
		i64 := z.Int64()
		i := int(i64)
		if int64(i) == i64 {
			return i, true
		}
	}
	return 0, false
}

// unify promotes a and b to a common kind that is at least floor.
func unify(a, b Num, floor Kind) (Num, Num, Kind) {
	k := max(KindOf(a), KindOf(b), floor)
	return promote(a, k), promote(b, k), k
}

func promote(n Num, k Kind) Num {
	switch k {
	case Int:
		return n
	case BigInt:
		switch n := n.(type) {
		case int:
			return big.NewInt(int64(n))
		case *big.Int:
			return n
		}
	case BigRat:
		switch n := n.(type) {
		case int:
			return big.NewRat(int64(n), 1)
		case *big.Int:
			return new(big.Rat).SetInt(n)
		case *big.Rat:
			return n
		}
	case Float:
		switch n := n.(type) {
		case int:
			return float64(n)
		case *big.Int:
			f, _ := new(big.Float).SetInt(n).Float64()
			return f
		case *big.Rat:
			f, _ := n.Float64()
			return f
		case float64:
			return n
		}
	}
	panic(fmt.Sprintf("arith: cannot promote %T to %v", n, k))
}

// Format renders n so that different kinds stay distinguishable: integers
// in base 10, rationals as p/q, and floats always carry a point or an
// exponent ("5.0", "1e+21").
func Format(n Num) string {
	switch n := n.(type) {
	case int:
		return strconv.Itoa(n)
	case *big.Int:
		return n.String()
	case *big.Rat:
		return n.RatString()
	case float64:
		return formatFloat(n)
	default:
		panic(fmt.Sprintf("arith: invalid num type %T", n))
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	noPoint := !strings.ContainsRune(s, '.')
	if (noPoint && len(s) > 14 && s[len(s)-1] == '0') || strings.HasPrefix(s, "0.0000") {
		return strconv.FormatFloat(f, 'e', -1, 64)
	} else if noPoint && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return s + ".0"
	}
	return s
}

// Equal reports whether a and b have the same kind and the same value once
// normalized. An exact 5 is not equal to the float 5.0, and NaN is not
// equal to anything.
func Equal(a, b Num) bool {
	a, b = Normalize(a), Normalize(b)
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch a := a.(type) {
	case int:
		return a == b.(int)
	case *big.Int:
		return a.Cmp(b.(*big.Int)) == 0
	case *big.Rat:
		return a.Cmp(b.(*big.Rat)) == 0
	case float64:
		return a == b.(float64)
	}
	return false
}
