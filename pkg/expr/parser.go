package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/abacus/pkg/arith"
)

// MaxDepth bounds how deeply parentheses and signs may nest.
const MaxDepth = 256

var (
	// ErrEmptyExpression is returned for blank input.
	ErrEmptyExpression = errors.New("empty expression")
	// ErrTooDeep is returned when an expression nests deeper than MaxDepth.
	ErrTooDeep = errors.New("expression nested too deeply")
	// ErrInvalidUTF8 is returned when the source is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("expression is not valid UTF-8")
)

// SyntaxError is a lexing or parsing error at a byte offset of the source.
type SyntaxError struct {
	Pos int
	Msg string
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

type parser struct {
	toks  []token
	i     int
	depth int
}

// Parse parses src into an expression tree.
func Parse(src string) (Node, error) {
	if !utf8.ValidString(src) {
		return nil, ErrInvalidUTF8
	}
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptyExpression
	}
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	ps := &parser{toks: toks}
	n, err := ps.expr()
	if err != nil {
		return nil, err
	}
	if tok := ps.peek(); tok.kind != tokEOF {
		return nil, ps.unexpected(tok)
	}
	return n, nil
}

func (ps *parser) peek() token { return ps.toks[ps.i] }

func (ps *parser) next() token {
	tok := ps.toks[ps.i]
	if tok.kind != tokEOF {
		ps.i++
	}
	return tok
}

func (ps *parser) unexpected(tok token) error {
	if tok.kind == tokEOF {
		return &SyntaxError{Pos: tok.pos, Msg: "unexpected end of expression"}
	}
	return &SyntaxError{Pos: tok.pos, Msg: "unexpected " + tok.kind.String()}
}

func (ps *parser) enter(pos int) error {
	ps.depth++
	if ps.depth > MaxDepth {
		return &SyntaxError{Pos: pos, Msg: ErrTooDeep.Error(), Err: ErrTooDeep}
	}
	return nil
}

func (ps *parser) leave() { ps.depth-- }

// expr := term (('+' | '-') term)*
func (ps *parser) expr() (Node, error) {
	x, err := ps.term()
	if err != nil {
		return nil, err
	}
	for {
		tok := ps.peek()
		var op arith.Op
		switch tok.kind {
		case tokPlus:
			op = arith.OpAdd
		case tokMinus:
			op = arith.OpSubtract
		default:
			return x, nil
		}
		ps.next()
		y, err := ps.term()
		if err != nil {
			return nil, err
		}
		x = &Binary{Pos: tok.pos, Op: op, X: x, Y: y}
	}
}

// term := unary (('*' | '/') unary)*
func (ps *parser) term() (Node, error) {
	x, err := ps.unary()
	if err != nil {
		return nil, err
	}
	for {
		tok := ps.peek()
		var op arith.Op
		switch tok.kind {
		case tokStar:
			op = arith.OpMultiply
		case tokSlash:
			op = arith.OpDivide
		default:
			return x, nil
		}
		ps.next()
		y, err := ps.unary()
		if err != nil {
			return nil, err
		}
		x = &Binary{Pos: tok.pos, Op: op, X: x, Y: y}
	}
}

// unary := ('+' | '-') unary | primary
func (ps *parser) unary() (Node, error) {
	tok := ps.peek()
	if tok.kind != tokPlus && tok.kind != tokMinus {
		return ps.primary()
	}
	ps.next()
	if err := ps.enter(tok.pos); err != nil {
		return nil, err
	}
	defer ps.leave()
	x, err := ps.unary()
	if err != nil {
		return nil, err
	}
	return &Unary{Pos: tok.pos, Negative: tok.kind == tokMinus, X: x}, nil
}

// primary := number | '(' expr ')'
func (ps *parser) primary() (Node, error) {
	tok := ps.next()
	switch tok.kind {
	case tokNumber:
		return &Number{Pos: tok.pos, Text: tok.text, Value: tok.value}, nil
	case tokLParen:
		if err := ps.enter(tok.pos); err != nil {
			return nil, err
		}
		defer ps.leave()
		x, err := ps.expr()
		if err != nil {
			return nil, err
		}
		if closing := ps.next(); closing.kind != tokRParen {
			if closing.kind == tokEOF {
				return nil, &SyntaxError{Pos: closing.pos, Msg: "missing ')' to close '(' at offset " + strconv.Itoa(tok.pos)}
			}
			return nil, ps.unexpected(closing)
		}
		return x, nil
	default:
		return nil, ps.unexpected(tok)
	}
}

func quote(s string) string { return strconv.Quote(s) }

func quoteRune(r rune) string { return strconv.QuoteRune(r) }
