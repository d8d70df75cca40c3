/*
Package arith implements the arithmetic core of abacus.

Numbers live in a small tower of Go types, ordered by how they unify:

	int  <  *big.Int  <  *big.Rat  <  float64

Operations on exact operands (int, *big.Int, *big.Rat) stay exact. Integer
results that do not fit in an int are promoted to *big.Int instead of
wrapping, and exact division produces a rational. Once any operand is a
float64 the whole operation is carried out in float64.

Every result is normalized: a *big.Int that fits in an int is returned as an
int, and a *big.Rat with denominator 1 is returned as an integer. This keeps
equality strict and predictable:

	arith.Equal(arith.Add(1, 2), 3)            // true
	n, _ := arith.Divide(10, 2)                // int 5
	arith.Equal(n, 5.0)                        // false: exact 5 is not float 5.0
*/
package arith
