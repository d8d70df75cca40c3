package expr

import (
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/abacus/pkg/arith"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return "number"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	default:
		return "unknown token"
	}
}

type token struct {
	kind  tokenKind
	pos   int
	text  string
	value arith.Num
}

// lexer splits the source into tokens. src must be valid UTF-8.
type lexer struct {
	src string
	pos int
}

const eof rune = -1

func (lx *lexer) peek() rune {
	if lx.pos >= len(lx.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return r
}

func (lx *lexer) next() rune {
	r := lx.peek()
	if r != eof {
		lx.pos += utf8.RuneLen(r)
	}
	return r
}

func (lx *lexer) skipSpace() {
	for unicode.IsSpace(lx.peek()) {
		lx.next()
	}
}

func tokenize(src string) ([]token, error) {
	lx := &lexer{src: src}
	var toks []token
	for {
		lx.skipSpace()
		begin := lx.pos
		r := lx.peek()
		if r == eof {
			toks = append(toks, token{kind: tokEOF, pos: begin})
			return toks, nil
		}
		if isDigit(r) || r == '.' {
			tok, err := lx.number()
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			continue
		}
		var kind tokenKind
		switch r {
		case '+':
			kind = tokPlus
		case '-':
			kind = tokMinus
		case '*':
			kind = tokStar
		case '/':
			kind = tokSlash
		case '(':
			kind = tokLParen
		case ')':
			kind = tokRParen
		default:
			return nil, &SyntaxError{Pos: begin, Msg: "unexpected character " + quoteRune(r)}
		}
		lx.next()
		toks = append(toks, token{kind: kind, pos: begin, text: string(r)})
	}
}

// number scans digits [ '.' digits ] [ ('e'|'E') ['+'|'-'] digits ].
func (lx *lexer) number() (token, error) {
	begin := lx.pos
	for isDigit(lx.peek()) {
		lx.next()
	}
	if lx.peek() == '.' {
		lx.next()
		for isDigit(lx.peek()) {
			lx.next()
		}
	}
	if r := lx.peek(); r == 'e' || r == 'E' {
		lx.next()
		if r := lx.peek(); r == '+' || r == '-' {
			lx.next()
		}
		if !isDigit(lx.peek()) {
			return token{}, &SyntaxError{Pos: lx.pos, Msg: "malformed exponent"}
		}
		for isDigit(lx.peek()) {
			lx.next()
		}
	}
	text := lx.src[begin:lx.pos]
	n, err := arith.Parse(text)
	if err != nil {
		return token{}, &SyntaxError{Pos: begin, Msg: "malformed number " + quote(text), Err: err}
	}
	return token{kind: tokNumber, pos: begin, text: text, value: n}, nil
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
