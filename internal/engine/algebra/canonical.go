package algebra

import (
	"sort"
	"strconv"
	"strings"
)

// Term is one summand of an expanded expression: coefficient times a
// monomial. Variable is the monomial key ("" for constants, "x", "ab",
// "x^2"); anything that is not a product of variables keeps its printed
// form as key.
type Term struct {
	Coefficient int64
	Variable    string
	factor      Node
}

// IsConstant reports whether t has no variable part
func (t Term) IsConstant() bool {
	return t.Variable == ""
}

// CanonicalOptions select the normalization steps
type CanonicalOptions struct {
	Combine     bool // merge like terms
	RemoveZeros bool // drop terms with coefficient 0
	Sort        bool // constants first, then monomials alphabetically
}

// Full is every normalization step
var Full = CanonicalOptions{Combine: true, RemoveZeros: true, Sort: true}

// Canonicalize expands n and rebuilds it as a left-associative sum of
// terms. Equations are canonicalized side by side. Applying it to its own
// output with the same options returns an equal tree.
func Canonicalize(n Node, opts CanonicalOptions) Node {
	if eq, ok := n.(*Equation); ok {
		return Eq(Canonicalize(eq.Left, opts), Canonicalize(eq.Right, opts))
	}
	return Rebuild(NormalizeTerms(Terms(n), opts))
}

// Terms expands n and flattens it through + and - into its summands
func Terms(n Node) []Term {
	var out []Term
	collectTerms(Expand(n), 1, &out)
	return out
}

// NormalizeTerms applies the option steps to a term list
func NormalizeTerms(terms []Term, opts CanonicalOptions) []Term {
	out := append([]Term(nil), terms...)
	if opts.Combine {
		out = combine(out)
	}
	if opts.RemoveZeros {
		kept := out[:0]
		for _, t := range out {
			if t.Coefficient != 0 {
				kept = append(kept, t)
			}
		}
		out = kept
	}
	if opts.Sort {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.IsConstant() != b.IsConstant() {
				return a.IsConstant()
			}
			if a.Variable != b.Variable {
				return a.Variable < b.Variable
			}
			return a.Coefficient < b.Coefficient
		})
	}
	return out
}

// Rebuild turns a term list back into a tree: the first term carries its
// sign, later ones are added or subtracted. An empty list is 0.
func Rebuild(terms []Term) Node {
	if len(terms) == 0 {
		return Num(0)
	}
	var out Node
	for i, t := range terms {
		if i == 0 {
			out = termNode(t, t.Coefficient)
			continue
		}
		if t.Coefficient < 0 {
			out = Sub(out, termNode(t, -t.Coefficient))
		} else {
			out = Add(out, termNode(t, t.Coefficient))
		}
	}
	return out
}

func termNode(t Term, coef int64) Node {
	if t.IsConstant() {
		return Num(coef)
	}
	factor := Clone(t.factor)
	switch coef {
	case 1:
		return factor
	case -1:
		return Neg(factor)
	}
	return Implicit(Num(coef), factor)
}

func combine(terms []Term) []Term {
	index := make(map[string]int)
	var out []Term
	for _, t := range terms {
		if i, ok := index[t.Variable]; ok {
			out[i].Coefficient += t.Coefficient
			continue
		}
		index[t.Variable] = len(out)
		out = append(out, t)
	}
	return out
}

func collectTerms(n Node, sign int64, out *[]Term) {
	switch v := n.(type) {
	case *BinaryOp:
		switch v.Op {
		case OpAdd:
			collectTerms(v.Left, sign, out)
			collectTerms(v.Right, sign, out)
			return
		case OpSub:
			collectTerms(v.Left, sign, out)
			collectTerms(v.Right, -sign, out)
			return
		}
	case *UnaryOp:
		collectTerms(v.Child, -sign, out)
		return
	}
	t := termOf(n)
	t.Coefficient *= sign
	*out = append(*out, t)
}

// termOf splits a product into its numeric coefficient and monomial
func termOf(n Node) Term {
	coef := int64(1)
	powers := make(map[string]int64)
	var opaque []Node

	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Number:
			coef *= v.Value
		case *Variable:
			powers[v.Name]++
		case *UnaryOp:
			coef = -coef
			walk(v.Child)
		case *BinaryOp:
			if v.Op == OpMul {
				walk(v.Left)
				walk(v.Right)
				return
			}
			if base, ok := v.Left.(*Variable); ok && v.Op == OpPow {
				if exp, ok := v.Right.(*Number); ok && exp.Value > 0 {
					powers[base.Name] += exp.Value
					return
				}
			}
			opaque = append(opaque, n)
		default:
			opaque = append(opaque, n)
		}
	}
	walk(n)

	names := make([]string, 0, len(powers))
	for name := range powers {
		names = append(names, name)
	}
	sort.Strings(names)

	var key strings.Builder
	var factor Node
	appendFactor := func(f Node) {
		if factor == nil {
			factor = f
		} else {
			factor = Implicit(factor, f)
		}
	}
	for _, name := range names {
		key.WriteString(name)
		if p := powers[name]; p > 1 {
			key.WriteString("^" + strconv.FormatInt(p, 10))
			appendFactor(Pow(Var(name), Num(p)))
		} else {
			appendFactor(Var(name))
		}
	}
	for _, o := range opaque {
		key.WriteString("[" + Flatten(o) + "]")
		appendFactor(Grouped(Clone(o)))
	}

	return Term{Coefficient: coef, Variable: key.String(), factor: factor}
}

// Canonical renders the fully normalized form of n, suitable as a map key
func Canonical(n Node) string {
	return Flatten(Canonicalize(n, Full))
}
