package algebra

import (
	"errors"
	"fmt"
	"math/big"
)

var ErrDivideByZero = errors.New("division by zero")

// Evaluate computes an arithmetic expression over integers with exact
// rational results. Only digits, + - * / (with · × : ÷ as aliases) and
// parentheses are allowed.
func Evaluate(input string) (*big.Rat, error) {
	e := &evaluator{input: []rune(input)}
	v, err := e.sum()
	if err != nil {
		return nil, err
	}
	e.skipSpace()
	if e.pos < len(e.input) {
		return nil, e.errorf("unexpected %q", e.input[e.pos])
	}
	return v, nil
}

type evaluator struct {
	input []rune
	pos   int
}

func (e *evaluator) errorf(format string, args ...any) error {
	return &ParseError{Pos: e.pos, Msg: fmt.Sprintf(format, args...), Err: ErrSyntax}
}

func (e *evaluator) skipSpace() {
	for e.pos < len(e.input) && e.input[e.pos] == ' ' {
		e.pos++
	}
}

func (e *evaluator) peek() rune {
	e.skipSpace()
	if e.pos >= len(e.input) {
		return 0
	}
	return e.input[e.pos]
}

func (e *evaluator) sum() (*big.Rat, error) {
	left, err := e.product()
	if err != nil {
		return nil, err
	}
	for {
		op := e.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		e.pos++
		right, err := e.product()
		if err != nil {
			return nil, err
		}
		if op == '+' {
			left = new(big.Rat).Add(left, right)
		} else {
			left = new(big.Rat).Sub(left, right)
		}
	}
}

func (e *evaluator) product() (*big.Rat, error) {
	left, err := e.factor()
	if err != nil {
		return nil, err
	}
	for {
		op := e.peek()
		switch op {
		case '*', '·', '×':
			e.pos++
			right, err := e.factor()
			if err != nil {
				return nil, err
			}
			left = new(big.Rat).Mul(left, right)
		case '/', ':', '÷':
			e.pos++
			right, err := e.factor()
			if err != nil {
				return nil, err
			}
			if right.Sign() == 0 {
				return nil, ErrDivideByZero
			}
			left = new(big.Rat).Quo(left, right)
		default:
			return left, nil
		}
	}
}

func (e *evaluator) factor() (*big.Rat, error) {
	switch r := e.peek(); {
	case r == '(':
		e.pos++
		v, err := e.sum()
		if err != nil {
			return nil, err
		}
		if e.peek() != ')' {
			return nil, e.errorf("expected )")
		}
		e.pos++
		return v, nil
	case r >= '0' && r <= '9':
		start := e.pos
		for e.pos < len(e.input) && e.input[e.pos] >= '0' && e.input[e.pos] <= '9' {
			e.pos++
		}
		v, ok := new(big.Rat).SetString(string(e.input[start:e.pos]))
		if !ok {
			return nil, e.errorf("bad number")
		}
		return v, nil
	case r == 0:
		return nil, e.errorf("operand expected")
	default:
		return nil, e.errorf("unexpected %q", r)
	}
}

// equalsInt reports whether v is exactly the integer n
func equalsInt(v *big.Rat, n int64) bool {
	return v != nil && v.Cmp(new(big.Rat).SetInt64(n)) == 0
}
