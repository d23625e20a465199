package algebra

// Expand distributes products over sums, a(b±c) = ab ± ac, and negation
// over sums, then simplifies. The input is left untouched.
func Expand(n Node) Node {
	switch v := n.(type) {
	case *BinaryOp:
		left, right := Expand(v.Left), Expand(v.Right)
		switch v.Op {
		case OpMul:
			if sum, ok := asSum(right); ok {
				return Expand(&BinaryOp{Op: sum.Op, Left: Mul(left, sum.Left), Right: Mul(Clone(left), sum.Right)})
			}
			if sum, ok := asSum(left); ok {
				return Expand(&BinaryOp{Op: sum.Op, Left: Mul(sum.Left, right), Right: Mul(sum.Right, Clone(right))})
			}
			return Simplify(&BinaryOp{Op: OpMul, Left: left, Right: right, Implicit: v.Implicit})
		case OpSub:
			// a - (b + c) = (a - b) - c and a - (b - c) = (a - b) + c
			if sum, ok := asSum(right); ok {
				return Expand(&BinaryOp{Op: flip(sum.Op), Left: Sub(left, sum.Left), Right: sum.Right})
			}
			return Simplify(Sub(left, right))
		case OpAdd:
			if sum, ok := asSum(right); ok {
				return Expand(&BinaryOp{Op: sum.Op, Left: Add(left, sum.Left), Right: sum.Right})
			}
			return Simplify(Add(left, right))
		default:
			return Simplify(&BinaryOp{Op: v.Op, Left: left, Right: right})
		}
	case *UnaryOp:
		inner := Expand(v.Child)
		if sum, ok := asSum(inner); ok {
			// -(a + b) = -a - b and -(a - b) = -a + b
			return Expand(&BinaryOp{Op: flip(sum.Op), Left: Neg(sum.Left), Right: sum.Right})
		}
		return Simplify(Neg(inner))
	case *Equation:
		return Eq(Expand(v.Left), Expand(v.Right))
	case *Root:
		return Sqrt(Expand(v.Child))
	}
	return Clone(n)
}

// Simplify folds constant products, writes coefficient products as
// juxtaposition with the number first (x·3 becomes 3x) and turns adding a
// negative into subtraction. It returns a new tree.
func Simplify(n Node) Node {
	switch v := n.(type) {
	case *BinaryOp:
		left, right := Simplify(v.Left), Simplify(v.Right)
		switch v.Op {
		case OpMul:
			return simplifyProduct(left, right, v.Implicit)
		case OpAdd, OpSub:
			return simplifySum(v.Op, left, right)
		}
		return &BinaryOp{Op: v.Op, Left: left, Right: right, Implicit: v.Implicit}
	case *UnaryOp:
		inner := Simplify(v.Child)
		switch c := inner.(type) {
		case *Number:
			return Num(-c.Value)
		case *UnaryOp:
			return c.Child
		case *BinaryOp:
			if coef, rest, ok := coefficient(c); ok {
				return monomial(-coef, rest)
			}
		}
		return Neg(inner)
	case *Equation:
		return Eq(Simplify(v.Left), Simplify(v.Right))
	case *Root:
		return Sqrt(Simplify(v.Child))
	}
	return Clone(n)
}

func simplifyProduct(left, right Node, implicit bool) Node {
	ln, lNum := left.(*Number)
	rn, rNum := right.(*Number)
	switch {
	case lNum && rNum:
		return Num(ln.Value * rn.Value)
	case rNum:
		// x·3 = 3x
		return simplifyProduct(rn, left, true)
	case lNum:
		switch r := right.(type) {
		case *UnaryOp:
			return simplifyProduct(Num(-ln.Value), r.Child, true)
		case *BinaryOp:
			if coef, rest, ok := coefficient(r); ok {
				return monomial(ln.Value*coef, rest)
			}
		}
		return monomial(ln.Value, right)
	}

	if u, ok := left.(*UnaryOp); ok {
		return simplifyProduct(Num(-1), simplifyProduct(u.Child, right, implicit), true)
	}
	if u, ok := right.(*UnaryOp); ok {
		return simplifyProduct(Num(-1), simplifyProduct(left, u.Child, implicit), true)
	}
	if lb, ok := left.(*BinaryOp); ok {
		// 3x·y = 3xy
		if coef, rest, ok := coefficient(lb); ok {
			return monomial(coef, simplifyProduct(rest, right, true))
		}
	}
	if rb, ok := right.(*BinaryOp); ok {
		if coef, rest, ok := coefficient(rb); ok {
			return monomial(coef, simplifyProduct(left, rest, true))
		}
	}
	if base, e1, ok := powerOf(left); ok {
		// x·x^2 = x^3
		if other, e2, ok := powerOf(right); ok && other == base {
			return Pow(Var(base), Num(e1+e2))
		}
	}
	if isLetterProduct(left) && isLetterProduct(right) {
		implicit = true
	}
	return &BinaryOp{Op: OpMul, Left: left, Right: right, Implicit: implicit}
}

func simplifySum(op string, left, right Node) Node {
	switch r := right.(type) {
	case *Number:
		if r.Value < 0 {
			return &BinaryOp{Op: flip(op), Left: left, Right: Num(-r.Value)}
		}
	case *UnaryOp:
		return &BinaryOp{Op: flip(op), Left: left, Right: r.Child}
	case *BinaryOp:
		if coef, rest, ok := coefficient(r); ok && coef < 0 {
			return &BinaryOp{Op: flip(op), Left: left, Right: monomial(-coef, rest)}
		}
	}
	return &BinaryOp{Op: op, Left: left, Right: right}
}

// monomial builds coef·rest in its printed normal form
func monomial(coef int64, rest Node) Node {
	switch coef {
	case 1:
		return rest
	case -1:
		return Neg(rest)
	}
	return Implicit(Num(coef), rest)
}

// coefficient splits a product whose left factor is a number
func coefficient(b *BinaryOp) (int64, Node, bool) {
	if b.Op != OpMul {
		return 0, nil, false
	}
	if n, ok := b.Left.(*Number); ok {
		return n.Value, b.Right, true
	}
	return 0, nil, false
}

// powerOf matches x and x^n for a positive literal n
func powerOf(n Node) (string, int64, bool) {
	switch v := n.(type) {
	case *Variable:
		return v.Name, 1, true
	case *BinaryOp:
		base, ok := v.Left.(*Variable)
		exp, isNum := v.Right.(*Number)
		if v.Op == OpPow && ok && isNum && exp.Value > 0 {
			return base.Name, exp.Value, true
		}
	}
	return "", 0, false
}

func isLetterProduct(n Node) bool {
	switch v := n.(type) {
	case *Variable:
		return true
	case *BinaryOp:
		return (v.Op == OpMul || v.Op == OpPow) && isLetterProduct(v.Left) &&
			(v.Op == OpPow || isLetterProduct(v.Right))
	}
	return false
}

func asSum(n Node) (*BinaryOp, bool) {
	b, ok := n.(*BinaryOp)
	if !ok || (b.Op != OpAdd && b.Op != OpSub) {
		return nil, false
	}
	return b, true
}

func flip(op string) string {
	if op == OpAdd {
		return OpSub
	}
	return OpAdd
}
