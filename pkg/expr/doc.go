// Package expr parses and evaluates literal arithmetic expressions such as
// "1 + 1" or "10 / 2" using the number tower of package arith.
//
// The grammar has the usual precedence and left associativity:
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := ('+' | '-') unary | primary
//	primary := number | '(' expr ')'
//
// A '/' is always division, so "1/3" evaluates to the rational 1/3 rather
// than being read as a rational literal.
package expr
