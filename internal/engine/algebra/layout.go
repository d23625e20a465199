package algebra

import (
	"strconv"
	"strings"
)

// GlyphKind classifies a laid out character
type GlyphKind int

const (
	GlyphNumber GlyphKind = iota
	GlyphVariable
	GlyphOperator
	GlyphParen
	GlyphEquals
)

// Glyph is one grid cell of a flattened expression
type Glyph struct {
	Text string
	Kind GlyphKind
}

// Printed operator symbols
var opSymbols = map[string]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "·",
	OpDiv: ":",
	OpPow: "^",
}

const (
	precEquation = 1
	precSum      = 2
	precProduct  = 3
	precUnary    = 4
	precPower    = 5
	precLiteral  = 100
)

func precedence(n Node) int {
	switch v := n.(type) {
	case *Number:
		if v.Value < 0 {
			return precUnary
		}
		return precLiteral
	case *Variable, *Root:
		return precLiteral
	case *UnaryOp:
		return precUnary
	case *Equation:
		return precEquation
	case *BinaryOp:
		switch v.Op {
		case OpAdd, OpSub:
			return precSum
		case OpMul, OpDiv:
			return precProduct
		case OpPow:
			return precPower
		}
	}
	return precLiteral
}

// Layout flattens n into one glyph per character, inserting parentheses
// where precedence or explicit grouping requires them.
func Layout(n Node) []Glyph {
	var out []Glyph
	layout(n, &out)
	return out
}

// Flatten renders n as a string
func Flatten(n Node) string {
	var b strings.Builder
	for _, g := range Layout(n) {
		b.WriteString(g.Text)
	}
	return b.String()
}

func layout(n Node, out *[]Glyph) {
	switch v := n.(type) {
	case *Number:
		for _, ch := range strconv.FormatInt(v.Value, 10) {
			kind := GlyphNumber
			if ch == '-' {
				kind = GlyphOperator
			}
			*out = append(*out, Glyph{string(ch), kind})
		}
	case *Variable:
		*out = append(*out, Glyph{v.Name, GlyphVariable})
	case *UnaryOp:
		*out = append(*out, Glyph{opSymbols[v.Op], GlyphOperator})
		child(v.Child, v.Child.Parens() || precedence(v.Child) < precUnary, out)
	case *Root:
		*out = append(*out, Glyph{"√", GlyphOperator})
		child(v.Child, v.Child.Parens() || precedence(v.Child) < precLiteral, out)
	case *Equation:
		child(v.Left, v.Left.Parens(), out)
		*out = append(*out, Glyph{"=", GlyphEquals})
		child(v.Right, v.Right.Parens(), out)
	case *BinaryOp:
		prec := precedence(v)
		leftParens := v.Left.Parens() || precedence(v.Left) < prec ||
			(v.Op == OpPow && precedence(v.Left) <= prec)
		child(v.Left, leftParens, out)

		var right []Glyph
		rightPrec := precedence(v.Right)
		rightParens := v.Right.Parens() || rightPrec < prec ||
			(rightPrec == prec && (v.Op == OpSub || v.Op == OpDiv)) ||
			(rightPrec == precUnary && v.Op != OpPow)
		child(v.Right, rightParens, &right)

		// juxtaposition needs an operator sign when the right side starts with a digit
		if !v.Implicit || right[0].Kind == GlyphNumber {
			*out = append(*out, Glyph{opSymbols[v.Op], GlyphOperator})
		}
		*out = append(*out, right...)
	}
}

func child(n Node, parens bool, out *[]Glyph) {
	if parens {
		*out = append(*out, Glyph{"(", GlyphParen})
	}
	layout(n, out)
	if parens {
		*out = append(*out, Glyph{")", GlyphParen})
	}
}
