package algebra

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

var (
	ErrSyntax = errors.New("syntax error")
	// ErrIncomplete means the input ended where more was expected, like
	// after a trailing operator or with a parenthesis still open.
	ErrIncomplete = errors.New("incomplete expression")
)

// ParseError locates a parse failure
type ParseError struct {
	Pos int
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d: %s", e.Err, e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokVariable
	tokOperator
	tokLParen
	tokRParen
	tokEquals
	tokRoot
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r):
			start := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			tokens = append(tokens, token{tokNumber, string(runes[start:i]), start})
		case unicode.IsLetter(r):
			tokens = append(tokens, token{tokVariable, string(r), i})
			i++
		default:
			t := token{pos: i}
			switch r {
			case '+':
				t.kind, t.text = tokOperator, OpAdd
			case '-', '−':
				t.kind, t.text = tokOperator, OpSub
			case '*', '·', '×':
				t.kind, t.text = tokOperator, OpMul
			case '/', ':', '÷':
				t.kind, t.text = tokOperator, OpDiv
			case '^':
				t.kind, t.text = tokOperator, OpPow
			case '(':
				t.kind = tokLParen
			case ')':
				t.kind = tokRParen
			case '=':
				t.kind = tokEquals
			case '√':
				t.kind = tokRoot
			default:
				return nil, &ParseError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r), Err: ErrSyntax}
			}
			tokens = append(tokens, t)
			i++
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(runes)}), nil
}

type parser struct {
	tokens []token
	pos    int
}

// Parse reads an expression or equation. Juxtaposition is multiplication
// (3x, 2(a+b), ab), and every letter is its own variable.
func Parse(input string) (Node, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.peek().kind == tokEOF {
		return nil, p.incomplete("empty input")
	}

	left, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokEquals {
		p.next()
		right, err := p.expr()
		if err != nil {
			return nil, err
		}
		left = Eq(left, right)
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.syntax(t, "unexpected input")
	}
	return left, nil
}

// MustParse is Parse for trusted input
func MustParse(input string) Node {
	n, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return n
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) incomplete(msg string) error {
	return &ParseError{Pos: p.peek().pos, Msg: msg, Err: ErrIncomplete}
}

func (p *parser) syntax(t token, msg string) error {
	return &ParseError{Pos: t.pos, Msg: msg, Err: ErrSyntax}
}

func (p *parser) expr() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOperator || (t.text != OpAdd && t.text != OpSub) {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: t.text, Left: left, Right: right}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case t.kind == tokOperator && (t.text == OpMul || t.text == OpDiv):
			p.next()
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			left = &BinaryOp{Op: t.text, Left: left, Right: right}
		case t.kind == tokNumber || t.kind == tokVariable || t.kind == tokLParen || t.kind == tokRoot:
			right, err := p.power()
			if err != nil {
				return nil, err
			}
			left = Implicit(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) unary() (Node, error) {
	t := p.peek()
	if t.kind == tokOperator && (t.text == OpSub || t.text == OpAdd) {
		p.next()
		child, err := p.unary()
		if err != nil {
			return nil, err
		}
		if t.text == OpAdd {
			return child, nil
		}
		return Neg(child), nil
	}
	return p.power()
}

func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokOperator && t.text == OpPow {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, p.syntax(t, "number out of range")
		}
		return Num(v), nil
	case tokVariable:
		return Var(t.text), nil
	case tokLParen:
		if p.peek().kind == tokEOF {
			return nil, p.incomplete("unclosed parenthesis")
		}
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		closing := p.peek()
		switch closing.kind {
		case tokRParen:
			p.next()
			return inner, nil
		case tokEOF:
			return nil, p.incomplete("unclosed parenthesis")
		default:
			return nil, p.syntax(closing, "expected )")
		}
	case tokRoot:
		child, err := p.power()
		if err != nil {
			return nil, err
		}
		return Sqrt(child), nil
	case tokEOF:
		return nil, p.incomplete("operand expected")
	default:
		return nil, p.syntax(t, "operand expected")
	}
}
